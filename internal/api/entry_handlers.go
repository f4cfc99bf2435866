package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mydiary/mydiary/internal/api/dto"
	"github.com/mydiary/mydiary/internal/cloud"
)

func (s *Server) registerEntryRoutes() {
	security := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "listEntries",
		Method:      http.MethodGet,
		Path:        "/api/v1/entries",
		Summary:     "List entries",
		Description: "Returns the caller's entries ordered by date, newest first",
		Tags:        []string{"Entries"},
		Security:    security,
	}, s.handleListEntries)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createEntry",
		Method:        http.MethodPost,
		Path:          "/api/v1/entries",
		Summary:       "Create entry",
		Description:   "Stores a new entry. The server assigns the ID and timestamps.",
		Tags:          []string{"Entries"},
		Security:      security,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEntry",
		Method:      http.MethodGet,
		Path:        "/api/v1/entries/{id}",
		Summary:     "Get entry",
		Tags:        []string{"Entries"},
		Security:    security,
	}, s.handleGetEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateEntry",
		Method:      http.MethodPatch,
		Path:        "/api/v1/entries/{id}",
		Summary:     "Update entry",
		Description: "Changes the supplied fields and bumps updated_at",
		Tags:        []string{"Entries"},
		Security:    security,
	}, s.handleUpdateEntry)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteEntry",
		Method:        http.MethodDelete,
		Path:          "/api/v1/entries/{id}",
		Summary:       "Delete entry",
		Tags:          []string{"Entries"},
		Security:      security,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteEntry)
}

// EntryListOutput wraps the entry list for Huma.
type EntryListOutput struct {
	Body dto.EntryList
}

// EntryOutput wraps a single entry for Huma.
type EntryOutput struct {
	Body dto.Entry
}

// CreateEntryInput wraps the create body for Huma.
type CreateEntryInput struct {
	Body dto.EntryCreate
}

// UpdateEntryInput wraps the patch body for Huma.
type UpdateEntryInput struct {
	dto.IDParam
	Body dto.EntryPatch
}

func (s *Server) handleListEntries(ctx context.Context, _ *struct{}) (*EntryListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.Entry, 0, len(entries))
	for i := range entries {
		out = append(out, mapEntry(&entries[i]))
	}
	return &EntryListOutput{Body: dto.EntryList{Entries: out}}, nil
}

func (s *Server) handleCreateEntry(ctx context.Context, input *CreateEntryInput) (*EntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	e, err := s.entries.InsertEntry(ctx, userID, input.Body.Draft(), s.now())
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: mapEntry(e)}, nil
}

func (s *Server) handleGetEntry(ctx context.Context, input *dto.IDParam) (*EntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	e, err := s.entries.GetEntry(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: mapEntry(e)}, nil
}

func (s *Server) handleUpdateEntry(ctx context.Context, input *UpdateEntryInput) (*EntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	e, err := s.entries.UpdateEntry(ctx, userID, input.ID, input.Body.Patch(), s.now())
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: mapEntry(e)}, nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, input *dto.IDParam) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.entries.DeleteEntry(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func mapEntry(e *cloud.Entry) dto.Entry {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.Entry{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Content:   e.Content,
		Mood:      string(e.Mood),
		Tags:      tags,
		Date:      e.Date,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
