package domain

// Quotes is the pool the quote of the day is drawn from.
var Quotes = []string{
	"The secret of getting ahead is getting started.",
	"Write what should not be forgotten.",
	"Your story is what you have, what you will always have.",
	"Today is a new beginning, a chance to turn your failures into achievements.",
	"Every day is a fresh start, make it count.",
	"The best time for new beginnings is now.",
	"Your thoughts shape your vision. Your vision shapes your reality.",
	"Document your journey, celebrate your growth.",
	"Small daily improvements over time lead to stunning results.",
	"Life is a story, make yours worth reading.",
}
