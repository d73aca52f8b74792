package service

import (
	"context"
	"fmt"
	"log"

	"github.com/tradenavi/orchestrator/internal/domain"
)

// saveWebDocuments persists documents gathered by a web-search fallback
// under the extracted HS code. Runs on the background scheduler with its
// own transaction, independent of the originating request.
func (s *Service) saveWebDocuments(ctx context.Context, hscodeValue string, docs []domain.ChainDocument) error {
	if len(docs) == 0 {
		log.Printf("INFO: no web search documents to save")
		return nil
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin document save transaction: %w", err)
	}
	defer tx.Rollback()

	hscode, err := tx.GetOrCreateHSCode(ctx, hscodeValue, "From web search")
	if err != nil {
		return fmt.Errorf("failed to get or create hscode %s: %w", hscodeValue, err)
	}

	created := 0
	for _, doc := range docs {
		inserted, err := tx.CreateDocument(ctx, &domain.Document{
			HSCodeID: hscode.ID,
			Content:  doc.Content,
			Metadata: doc.MetadataJSON(),
		})
		if err != nil {
			return fmt.Errorf("failed to save document for hscode %s: %w", hscodeValue, err)
		}
		if inserted {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document save transaction: %w", err)
	}
	log.Printf("INFO: saved %d new documents for HS code %s", created, hscodeValue)
	return nil
}
