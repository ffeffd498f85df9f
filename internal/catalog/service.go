// internal/catalog/service.go

// Package catalog serves the read-only marketplace content: volunteer
// programs, CMS pages and site settings, all sourced from the document store.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"voluntra-backend/internal/common/database"
	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/models"
)

const (
	programsCollection = "programs"
	pagesCollection    = "pages"
	settingsCollection = "settings"
	settingsDocumentID = "site"
)

// DocumentReader is the read surface of the document store used by the
// catalog.
type DocumentReader interface {
	Get(ctx context.Context, collection, id string) (*database.Document, error)
	GetAll(ctx context.Context, collection string) ([]database.Document, error)
	Query(ctx context.Context, collection string, filters map[string]interface{}) ([]database.Document, error)
}

type Service struct {
	store  DocumentReader
	logger logger.Logger
}

func NewService(store DocumentReader, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// Programs returns every published program.
func (s *Service) Programs(ctx context.Context) ([]models.Program, error) {
	docs, err := s.store.GetAll(ctx, programsCollection)
	if err != nil {
		return nil, fmt.Errorf("listing programs: %w", err)
	}

	programs := make([]models.Program, 0, len(docs))
	for _, doc := range docs {
		program, err := decodeProgram(doc)
		if err != nil {
			// A malformed document should not take down the whole listing.
			s.logger.Warn("skipping malformed program document", map[string]interface{}{
				"documentId": doc.ID,
				"error":      err,
			})
			continue
		}
		programs = append(programs, program)
	}
	return programs, nil
}

// Program resolves one program by document ID, falling back to the URL slug.
// Intake links carry either form.
func (s *Service) Program(ctx context.Context, ref string) (models.Program, error) {
	doc, err := s.store.Get(ctx, programsCollection, ref)
	if err == nil {
		return decodeProgram(*doc)
	}
	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) && stdErr.Code == stderrors.ErrCodeDocumentNotFound {
		return s.ProgramBySlug(ctx, ref)
	}
	return models.Program{}, err
}

// ProgramBySlug looks up one program by its URL slug.
func (s *Service) ProgramBySlug(ctx context.Context, slug string) (models.Program, error) {
	docs, err := s.store.Query(ctx, programsCollection, map[string]interface{}{"slug": slug})
	if err != nil {
		return models.Program{}, fmt.Errorf("querying program %q: %w", slug, err)
	}
	if len(docs) == 0 {
		return models.Program{}, stderrors.NewDocumentNotFoundError(programsCollection, slug)
	}
	return decodeProgram(docs[0])
}

// Page returns the CMS page with the given slug.
func (s *Service) Page(ctx context.Context, slug string) (models.PageContent, error) {
	doc, err := s.store.Get(ctx, pagesCollection, slug)
	if err != nil {
		return models.PageContent{}, err
	}

	var page models.PageContent
	if err := mapstructure.Decode(doc.Data, &page); err != nil {
		return models.PageContent{}, fmt.Errorf("decoding page %q: %w", slug, err)
	}
	page.Slug = doc.ID
	return page, nil
}

// Settings returns the singleton site settings document.
func (s *Service) Settings(ctx context.Context) (models.SiteSettings, error) {
	doc, err := s.store.Get(ctx, settingsCollection, settingsDocumentID)
	if err != nil {
		return models.SiteSettings{}, err
	}

	var settings models.SiteSettings
	if err := mapstructure.Decode(doc.Data, &settings); err != nil {
		return models.SiteSettings{}, fmt.Errorf("decoding site settings: %w", err)
	}
	return settings, nil
}

func decodeProgram(doc database.Document) (models.Program, error) {
	var program models.Program
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &program,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return models.Program{}, err
	}
	if err := decoder.Decode(doc.Data); err != nil {
		return models.Program{}, err
	}
	program.ID = doc.ID
	return program, nil
}
