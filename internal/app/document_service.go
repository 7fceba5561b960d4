package app

import (
	"context"
	"log"
	"os"

	"classcare-chatbot/internal/model"
	"classcare-chatbot/internal/repository"
)

// DocumentService owns the document lifecycle: record on upload, ingest into
// the vector store, and cascading delete.
type DocumentService struct {
	docRepo *repository.DocumentRepository
	rag     *RAGService
}

func NewDocumentService(docRepo *repository.DocumentRepository, rag *RAGService) *DocumentService {
	return &DocumentService{docRepo: docRepo, rag: rag}
}

type UploadDocumentInput struct {
	Title      string
	FilePath   string
	FileType   string
	UploadedBy uint
}

type UploadDocumentResult struct {
	Document *model.Document `json:"document"`
	Ingest   IngestResult    `json:"ingest"`
}

// Upload records the document and ingests it. A failed ingestion removes
// the record again, so only processed documents are ever listed.
func (s *DocumentService) Upload(ctx context.Context, input UploadDocumentInput) (*UploadDocumentResult, error) {
	if input.Title == "" || input.FilePath == "" || input.FileType == "" {
		return nil, ErrInvalidInput
	}

	doc := &model.Document{
		Title:      input.Title,
		FilePath:   input.FilePath,
		FileType:   input.FileType,
		UploadedBy: input.UploadedBy,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	result := s.rag.Ingest(ctx, IngestInput{
		FilePath:   input.FilePath,
		FileType:   input.FileType,
		DocumentID: doc.ID,
	})
	if !result.Success {
		if err := s.docRepo.Delete(doc.ID); err != nil {
			log.Printf("remove record of failed upload %s failed: %v", doc.ID, err)
		}
		return &UploadDocumentResult{Ingest: result}, nil
	}

	doc.Processed = true
	doc.NumChunks = result.NumChunks
	if err := s.docRepo.Update(doc); err != nil {
		return nil, err
	}
	return &UploadDocumentResult{Document: doc, Ingest: result}, nil
}

func (s *DocumentService) List() ([]model.Document, error) {
	return s.docRepo.List()
}

func (s *DocumentService) Get(id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Delete removes the document's chunks, relational record, and stored file.
// The three cleanups are deliberately independent: a vector-store failure is
// logged but never blocks the relational and file cleanup.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}

	if result := s.rag.DeleteDocument(ctx, doc.ID); !result.Success {
		log.Printf("vector store cleanup for document %s failed: %s", doc.ID, result.Error)
	}

	if err := s.docRepo.Delete(doc.ID); err != nil {
		return err
	}

	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("remove stored file %s failed: %v", doc.FilePath, err)
		}
	}
	return nil
}
