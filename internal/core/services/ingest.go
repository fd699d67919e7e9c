package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/tbr-cli/internal/core/domain"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
	"github.com/custodia-labs/tbr-cli/internal/core/ports/driving"
	"github.com/custodia-labs/tbr-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// Warning classes used during ingestion.
const (
	warnCatalog   = "catalog"
	warnSummarize = "summarize"
	warnEmbed     = "embed"
	warnVector    = "vector"
)

// linkOutcome classifies what happened to one candidate.
type linkOutcome int

const (
	outcomeLinked linkOutcome = iota
	outcomeAdded
	outcomeUnsearchable
)

// IngestService runs the ingestion pipeline: extraction, identity
// resolution, enrichment and persistence across the relational store
// and the vector index. It is the sole writer of books, sources and
// mentions.
//
// The relational store is the source of truth. Vector writes are
// best-effort: a failed embed or upsert leaves the book stored but
// unsearchable, repairable later by reindex.
type IngestService struct {
	books    driven.BookStore
	sources  driven.SourceStore
	mentions driven.MentionStore
	vector   driven.VectorIndex
	embedder driven.EmbeddingService
	catalog  driven.CatalogClient
	llm      driven.MentionExtractor
	filter   *ExtractionFilter
	notifier *Notifier
}

// NewIngestService creates an ingest service. The notifier is scoped
// to one run and should be recreated per invocation.
func NewIngestService(
	books driven.BookStore,
	sources driven.SourceStore,
	mentions driven.MentionStore,
	vector driven.VectorIndex,
	embedder driven.EmbeddingService,
	catalog driven.CatalogClient,
	llm driven.MentionExtractor,
	notifier *Notifier,
) *IngestService {
	return &IngestService{
		books:    books,
		sources:  sources,
		mentions: mentions,
		vector:   vector,
		embedder: embedder,
		catalog:  catalog,
		llm:      llm,
		filter:   NewExtractionFilter(llm, notifier),
		notifier: notifier,
	}
}

// IngestThread processes a normalised thread: it registers the source
// (idempotently), extracts candidates from every comment, resolves
// each candidate against the existing collection and persists the
// outcome. A catalog quota error aborts the batch and returns the
// partial report alongside the error.
func (s *IngestService) IngestThread(
	ctx context.Context, thread *domain.Thread, opts driving.IngestOptions,
) (*driving.IngestReport, error) {
	logger.Section("Ingestion")

	if thread == nil || thread.ID == "" {
		return nil, fmt.Errorf("%w: thread has no external ID", domain.ErrInvalidThread)
	}

	source := &domain.Source{
		Kind:       thread.Kind,
		ExternalID: thread.ID,
		Title:      thread.Title,
		URL:        thread.URL,
	}
	if thread.Subreddit != "" {
		source.Metadata = map[string]any{"subreddit": thread.Subreddit}
	}

	sourceID, err := s.sources.Ensure(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("ensure source: %w", err)
	}

	report := &driving.IngestReport{SourceID: sourceID}

	texts := thread.CommentTexts()
	logger.Info("Ingesting %q: %d text blocks", thread.Title, len(texts))

	for i, text := range texts {
		candidates := s.filter.Candidates(ctx, text)
		report.Mentions += len(candidates)

		if opts.Progress != nil {
			titles := make([]string, len(candidates))
			for j, c := range candidates {
				titles[j] = c.Title
			}
			opts.Progress(i+1, len(texts), titles)
		}

		for _, candidate := range candidates {
			outcome, err := s.linkOrCreate(ctx, candidate, sourceID, thread.Title)
			if err != nil {
				if errors.Is(err, domain.ErrQuotaExceeded) {
					return report, fmt.Errorf("ingest aborted: %w", err)
				}
				return report, fmt.Errorf("persist candidate %q: %w", candidate.Title, err)
			}

			switch outcome {
			case outcomeLinked:
				report.Linked++
			case outcomeAdded:
				report.Added++
			case outcomeUnsearchable:
				report.Unsearchable++
			}
		}
	}

	logger.Info("Ingest complete: %d added, %d linked, %d unsearchable",
		report.Added, report.Linked, report.Unsearchable)
	return report, nil
}

// linkOrCreate resolves one candidate to an existing book or creates a
// new one, and links it to the source. Identity is checked against two
// independent keys in order: normalised title/author, then the catalog
// ID returned by enrichment (catalog IDs are authoritative, so a
// catalog match beats a fresh insert even when the strings differ).
func (s *IngestService) linkOrCreate(
	ctx context.Context, candidate domain.Candidate, sourceID int64, sourceTitle string,
) (linkOutcome, error) {
	existing, err := s.books.FindByTitleAuthor(ctx, candidate.Title, candidate.Author)
	if err != nil {
		return 0, fmt.Errorf("find by title/author: %w", err)
	}
	if existing != nil {
		return outcomeLinked, s.link(ctx, existing.ID, sourceID)
	}

	record, err := s.enrich(ctx, candidate)
	if err != nil {
		return 0, err
	}

	if record != nil && record.CatalogID != "" {
		dup, err := s.books.FindByCatalogID(ctx, record.CatalogID)
		if err != nil {
			return 0, fmt.Errorf("find by catalog ID: %w", err)
		}
		if dup != nil {
			return outcomeLinked, s.link(ctx, dup.ID, sourceID)
		}
	}

	book := s.buildBook(ctx, candidate, record)

	id, err := s.books.Save(ctx, book)
	if err != nil {
		return 0, fmt.Errorf("save book: %w", err)
	}
	book.ID = id

	outcome := outcomeUnsearchable
	if book.Description != "" && s.embed(ctx, book, sourceTitle) {
		outcome = outcomeAdded
	}

	if err := s.link(ctx, id, sourceID); err != nil {
		return 0, err
	}
	return outcome, nil
}

// enrich looks up catalog metadata for a candidate. A quota error
// propagates to abort the batch; any other failure degrades to "no
// match" with a one-time warning.
func (s *IngestService) enrich(ctx context.Context, candidate domain.Candidate) (*domain.CatalogRecord, error) {
	record, err := s.catalog.Lookup(ctx, candidate.Title, candidate.Author)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			return nil, err
		}
		s.notifier.WarnOnce(warnCatalog, "catalog lookup failed: %v", err)
		return nil, nil
	}
	return record, nil
}

// buildBook merges the candidate with the catalog record, preferring
// catalog data where present. New books always start as StatusNew; a
// bare-bones book with no description is still stored, just not
// embedded.
func (s *IngestService) buildBook(
	ctx context.Context, candidate domain.Candidate, record *domain.CatalogRecord,
) *domain.Book {
	book := &domain.Book{
		Title:  candidate.Title,
		Author: candidate.Author,
		Status: domain.StatusNew,
	}
	if record == nil {
		return book
	}

	if record.Title != "" {
		book.Title = record.Title
	}
	if author := strings.Join(record.Authors, ", "); author != "" {
		book.Author = author
	}
	book.Description = record.Description
	book.CatalogID = record.CatalogID
	book.ISBN = record.ISBN
	book.CoverURL = record.CoverURL
	book.PurchaseURL = record.PurchaseURL

	if book.Description != "" {
		summary, err := s.llm.Summarize(ctx, book.Description)
		if err != nil {
			s.notifier.WarnOnce(warnSummarize, "summarisation failed: %v", err)
		} else {
			book.Summary = summary
		}
	}

	return book
}

// embed builds the book's chunk, embeds it and upserts it into the
// vector index. Returns false when the book could not be made
// searchable; the relational record is kept either way.
func (s *IngestService) embed(ctx context.Context, book *domain.Book, sourceTitle string) bool {
	chunk := BuildChunk(book.Title, authorOrUnknown(book.Author), book.Description, []string{sourceTitle})

	embedding, err := s.embedder.Embed(ctx, chunk)
	if err != nil {
		s.notifier.WarnOnce(warnEmbed, "embedding failed: %v", err)
		return false
	}

	metadata := vectorMetadata(book, sourceTitle)
	if err := s.vector.Upsert(ctx, book.VectorKey(), embedding, chunk, metadata); err != nil {
		s.notifier.WarnOnce(warnVector, "vector upsert failed: %v", err)
		return false
	}
	return true
}

// link writes the mention row. The store treats duplicate (book,
// source) pairs as a no-op, which keeps re-ingestion safe to retry.
func (s *IngestService) link(ctx context.Context, bookID, sourceID int64) error {
	err := s.mentions.Link(ctx, domain.Mention{BookID: bookID, SourceID: sourceID})
	if err != nil {
		return fmt.Errorf("link book %d to source %d: %w", bookID, sourceID, err)
	}
	return nil
}

// vectorMetadata builds the payload stored alongside an embedding.
func vectorMetadata(book *domain.Book, sourceTitle string) map[string]string {
	return map[string]string{
		driven.MetaBookID:      strconv.FormatInt(book.ID, 10),
		driven.MetaTitle:       book.Title,
		driven.MetaAuthor:      authorOrUnknown(book.Author),
		driven.MetaSourceTitle: sourceTitle,
	}
}

// authorOrUnknown substitutes a display value for missing authors.
func authorOrUnknown(author string) string {
	if author == "" {
		return "Unknown"
	}
	return author
}
