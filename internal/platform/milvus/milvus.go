// Package milvus wraps the Milvus v2 client with the single collection this
// service uses for document chunks.
package milvus

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

const (
	fieldID         = "id"
	fieldEmbedding  = "embedding"
	fieldDocumentID = "document_id"
	fieldSource     = "source"
	fieldContent    = "content"
	fieldChunkIndex = "chunk_index"
)

type Config struct {
	Address    string
	Username   string
	Password   string
	Database   string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

// Chunk is one embedded document fragment stored in the collection.
type Chunk struct {
	DocumentID string
	Source     string
	Content    string
	ChunkIndex int64
	Embedding  []float32
}

// Hit is one search result with its L2 distance.
type Hit struct {
	DocumentID string
	Source     string
	Content    string
	ChunkIndex int64
	Distance   float32
}

// Store lazily connects to Milvus on first use so the server can boot even
// when the vector database is down.
type Store struct {
	cfg Config

	connectOnce sync.Once
	client      *milvusclient.Client
	connectErr  error
}

func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

func (s *Store) Collection() string { return s.cfg.Collection }

func (s *Store) conn(ctx context.Context) (*milvusclient.Client, error) {
	s.connectOnce.Do(func() {
		dialCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()

		cli, err := milvusclient.New(dialCtx, &milvusclient.ClientConfig{
			Address:  s.cfg.Address,
			Username: s.cfg.Username,
			Password: s.cfg.Password,
			DBName:   s.cfg.Database,
		})
		if err != nil {
			s.connectErr = fmt.Errorf("connect milvus at %s failed: %w", s.cfg.Address, err)
			return
		}
		s.client = cli

		if err := s.ensureCollection(ctx, cli); err != nil {
			s.connectErr = err
			s.client = nil
			_ = cli.Close(ctx)
		}
	})
	if s.connectErr != nil {
		return nil, s.connectErr
	}
	return s.client, nil
}

// Ping reports whether the store is reachable, connecting if needed.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

func (s *Store) ensureCollection(ctx context.Context, cli *milvusclient.Client) error {
	has, err := cli.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.cfg.Collection))
	if err != nil {
		return fmt.Errorf("check collection %q failed: %w", s.cfg.Collection, err)
	}
	if !has {
		schema := entity.NewSchema().
			WithName(s.cfg.Collection).
			WithDescription("document chunks with embeddings").
			WithAutoID(true).
			WithField(entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeInt64).WithIsPrimaryKey(true).WithIsAutoID(true)).
			WithField(entity.NewField().WithName(fieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.cfg.Dimension))).
			WithField(entity.NewField().WithName(fieldDocumentID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(fieldSource).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
			WithField(entity.NewField().WithName(fieldContent).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(fieldChunkIndex).WithDataType(entity.FieldTypeInt64))

		if err := cli.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(s.cfg.Collection, schema)); err != nil {
			return fmt.Errorf("create collection %q failed: %w", s.cfg.Collection, err)
		}

		idx := index.NewIvfFlatIndex(entity.L2, 128)
		task, err := cli.CreateIndex(ctx, milvusclient.NewCreateIndexOption(s.cfg.Collection, fieldEmbedding, idx))
		if err != nil {
			return fmt.Errorf("create index on %q failed: %w", s.cfg.Collection, err)
		}
		if err := task.Await(ctx); err != nil {
			return fmt.Errorf("await index on %q failed: %w", s.cfg.Collection, err)
		}
	}

	loadTask, err := cli.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.cfg.Collection))
	if err != nil {
		return fmt.Errorf("load collection %q failed: %w", s.cfg.Collection, err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("await load of %q failed: %w", s.cfg.Collection, err)
	}
	return nil
}

// InsertChunks upserts a batch of chunks and flushes so they become
// searchable immediately.
func (s *Store) InsertChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	cli, err := s.conn(ctx)
	if err != nil {
		return err
	}

	vectors := make([][]float32, len(chunks))
	docIDs := make([]string, len(chunks))
	sources := make([]string, len(chunks))
	contents := make([]string, len(chunks))
	indexes := make([]int64, len(chunks))
	for i, c := range chunks {
		vectors[i] = c.Embedding
		docIDs[i] = c.DocumentID
		sources[i] = c.Source
		contents[i] = c.Content
		indexes[i] = c.ChunkIndex
	}

	opt := milvusclient.NewColumnBasedInsertOption(s.cfg.Collection,
		column.NewColumnFloatVector(fieldEmbedding, s.cfg.Dimension, vectors),
		column.NewColumnVarChar(fieldDocumentID, docIDs),
		column.NewColumnVarChar(fieldSource, sources),
		column.NewColumnVarChar(fieldContent, contents),
		column.NewColumnInt64(fieldChunkIndex, indexes),
	)
	if _, err := cli.Insert(ctx, opt); err != nil {
		return fmt.Errorf("insert %d chunks failed: %w", len(chunks), err)
	}

	flushTask, err := cli.Flush(ctx, milvusclient.NewFlushOption(s.cfg.Collection))
	if err != nil {
		return fmt.Errorf("flush collection %q failed: %w", s.cfg.Collection, err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("await flush of %q failed: %w", s.cfg.Collection, err)
	}
	return nil
}

// Search returns the topK nearest chunks to the query vector, optionally
// constrained by a boolean filter expression.
func (s *Store) Search(ctx context.Context, vector []float32, topK int, filter string) ([]Hit, error) {
	cli, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	opt := milvusclient.NewSearchOption(s.cfg.Collection, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(fieldEmbedding).
		WithSearchParam("nprobe", "16").
		WithOutputFields(fieldDocumentID, fieldSource, fieldContent, fieldChunkIndex)
	if filter != "" {
		opt = opt.WithFilter(filter)
	}

	results, err := cli.Search(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("search collection %q failed: %w", s.cfg.Collection, err)
	}

	var hits []Hit
	for _, rs := range results {
		for i := 0; i < rs.ResultCount; i++ {
			hit := Hit{Distance: rs.Scores[i]}
			for _, field := range rs.Fields {
				switch col := field.(type) {
				case *column.ColumnVarChar:
					switch col.Name() {
					case fieldDocumentID:
						hit.DocumentID = col.Data()[i]
					case fieldSource:
						hit.Source = col.Data()[i]
					case fieldContent:
						hit.Content = col.Data()[i]
					}
				case *column.ColumnInt64:
					if col.Name() == fieldChunkIndex {
						hit.ChunkIndex = col.Data()[i]
					}
				}
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// DeleteByDocumentID removes every chunk whose document_id matches.
func (s *Store) DeleteByDocumentID(ctx context.Context, documentID string) (int64, error) {
	cli, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	expr := fmt.Sprintf("%s == %q", fieldDocumentID, documentID)
	result, err := cli.Delete(ctx, milvusclient.NewDeleteOption(s.cfg.Collection).WithExpr(expr))
	if err != nil {
		return 0, fmt.Errorf("delete chunks of document %s failed: %w", documentID, err)
	}
	return result.DeleteCount, nil
}

// RowCount returns the collection's row_count stat.
func (s *Store) RowCount(ctx context.Context) (int64, error) {
	cli, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	stats, err := cli.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(s.cfg.Collection))
	if err != nil {
		return 0, fmt.Errorf("collection stats for %q failed: %w", s.cfg.Collection, err)
	}
	if raw, ok := stats["row_count"]; ok {
		return strconv.ParseInt(raw, 10, 64)
	}
	return 0, nil
}

// Drop removes the whole collection. Used by the dropcollection tool.
func (s *Store) Drop(ctx context.Context) error {
	cli, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := cli.DropCollection(ctx, milvusclient.NewDropCollectionOption(s.cfg.Collection)); err != nil {
		return fmt.Errorf("drop collection %q failed: %w", s.cfg.Collection, err)
	}
	return nil
}

// Close releases the client connection if one was established.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Close(ctx)
}
