package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// CollectionName is the single Qdrant collection holding every bot's chunks.
// Bots are separated by the bot_id payload field, not by collection.
const CollectionName = "botverse_chunks"

// Qdrant stores chunk vectors in a Qdrant instance over gRPC.
//
// The collection is created lazily on the first Append: its vector size is
// taken from that first record, and every later append must match it.
type Qdrant struct {
	client *qdrant.Client
	logger *slog.Logger

	mu        sync.Mutex
	dimension int // 0 until the collection is known to exist
}

var _ Store = (*Qdrant)(nil)

// NewQdrant connects to Qdrant and verifies it is reachable. Connection
// failures are retried with exponential backoff before giving up.
func NewQdrant(host string, port int, logger *slog.Logger) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	s := &Qdrant{
		client: client,
		logger: logger,
	}

	if err := s.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return s, nil
}

// healthCheckWithRetry probes Qdrant with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Qdrant) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, exponentialBackoff)
}

// Health performs a single health check against Qdrant.
func (s *Qdrant) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// Close closes the underlying gRPC connection.
func (s *Qdrant) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// ensureCollection creates the collection if needed, fixing its vector size
// to the given dimension, and validates the dimension on every later call.
func (s *Qdrant) ensureCollection(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension != 0 {
		if dimension != s.dimension {
			return fmt.Errorf("%w: collection holds %d-dimensional vectors, got %d",
				ErrDimensionMismatch, s.dimension, dimension)
		}
		return nil
	}

	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, name := range collections {
		if name == CollectionName {
			info, err := s.client.GetCollectionInfo(ctx, CollectionName)
			if err != nil {
				return fmt.Errorf("failed to get collection: %w", err)
			}
			existing := int(info.Config.Params.VectorsConfig.GetParams().GetSize())
			if existing != 0 && existing != dimension {
				return fmt.Errorf("%w: collection holds %d-dimensional vectors, got %d",
					ErrDimensionMismatch, existing, dimension)
			}
			s.dimension = dimension
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Without these indexes, payload filtering degrades badly at scale.
	for _, field := range []string{"bot_id", "document_id"} {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: CollectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for field %s: %w", field, err)
		}
	}

	s.logger.Info("created qdrant collection",
		"collection", CollectionName,
		"dimension", dimension)

	s.dimension = dimension
	return nil
}

// pointID derives a stable UUID for a chunk so that re-ingesting the same
// document overwrites its points instead of duplicating them.
func pointID(rec Record) string {
	key := fmt.Sprintf("%s/%s/%d", rec.BotID, rec.DocumentID, rec.ChunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

// Append stores one chunk record, retrying transient upsert failures with
// exponential backoff.
func (s *Qdrant) Append(ctx context.Context, rec Record) error {
	if err := s.ensureCollection(ctx, len(rec.Vector)); err != nil {
		return err
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(pointID(rec)),
		Vectors: qdrant.NewVectors(rec.Vector...),
		Payload: qdrant.NewValueMap(map[string]any{
			"bot_id":      rec.BotID,
			"document_id": rec.DocumentID,
			"chunk_index": rec.ChunkIndex,
			"text":        rec.Text,
		}),
	}

	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Points:         []*qdrant.PointStruct{point},
		})
		return err
	}, exponentialBackoff)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}

	return nil
}

// FetchAll scrolls every chunk of a bot out of Qdrant, with vectors, ordered
// by document id and chunk index.
func (s *Qdrant) FetchAll(ctx context.Context, botID string) ([]Record, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("bot_id", botID),
		},
	}

	var records []Record
	var offset *qdrant.PointId
	batchSize := uint32(100)

	for {
		results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: CollectionName,
			Filter:         filter,
			Limit:          qdrant.PtrOf(batchSize),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll chunks: %w", err)
		}

		for _, result := range results {
			payload := result.Payload
			records = append(records, Record{
				BotID:      botID,
				DocumentID: payload["document_id"].GetStringValue(),
				ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
				Text:       payload["text"].GetStringValue(),
				Vector:     result.Vectors.GetVector().GetData(),
			})
		}

		if uint32(len(results)) < batchSize {
			break
		}
		offset = results[len(results)-1].Id
	}

	sort.SliceStable(records, func(a, b int) bool {
		if records[a].DocumentID != records[b].DocumentID {
			return records[a].DocumentID < records[b].DocumentID
		}
		return records[a].ChunkIndex < records[b].ChunkIndex
	})

	return records, nil
}

// DeleteDocument removes every chunk of one document.
func (s *Qdrant) DeleteDocument(ctx context.Context, botID, documentID string) error {
	return s.deleteByFilter(ctx, &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("bot_id", botID),
			qdrant.NewMatch("document_id", documentID),
		},
	})
}

// DeleteBot removes every chunk belonging to the bot.
func (s *Qdrant) DeleteBot(ctx context.Context, botID string) error {
	return s.deleteByFilter(ctx, &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("bot_id", botID),
		},
	})
}

func (s *Qdrant) deleteByFilter(ctx context.Context, filter *qdrant.Filter) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: CollectionName,
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}
