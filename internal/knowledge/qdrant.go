package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// basicAuth implements credentials.PerRPCCredentials for Qdrant API keys
type basicAuth struct {
	username string
	password string
}

func (b *basicAuth) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{
		"authorization": "Bearer " + b.password,
	}, nil
}

func (b *basicAuth) RequireTransportSecurity() bool {
	return false
}

// QdrantIndex is the vector store backing knowledge retrieval. Each tenant
// gets its own collection.
type QdrantIndex struct {
	collections qdrant.CollectionsClient
	conn        *grpc.ClientConn
}

// NewQdrantIndex connects to Qdrant over gRPC. When the gRPC port (6334)
// fails to dial it retries on 6333.
func NewQdrantIndex(qdrantURL, qdrantPassword string) (*QdrantIndex, error) {
	var dialOpts []grpc.DialOption

	if qdrantPassword != "" {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(&basicAuth{
			username: "qdrant",
			password: qdrantPassword,
		}))
	}
	dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))

	conn, err := grpc.Dial(qdrantURL, dialOpts...)
	if err != nil {
		if strings.Contains(qdrantURL, ":6334") {
			fallbackURL := strings.Replace(qdrantURL, ":6334", ":6333", 1)
			log.Warn().Str("url", qdrantURL).Str("fallback", fallbackURL).Msg("Qdrant dial failed, trying fallback port")
			conn, err = grpc.Dial(fallbackURL, dialOpts...)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
		}
	}

	return &QdrantIndex{
		collections: qdrant.NewCollectionsClient(conn),
		conn:        conn,
	}, nil
}

// CollectionName returns the per-tenant knowledge collection name
func (q *QdrantIndex) CollectionName(tenantID string) string {
	return fmt.Sprintf("kb_tenant_%s", tenantID)
}

func (q *QdrantIndex) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// Health lists collections as a basic connectivity check
func (q *QdrantIndex) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := q.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("Qdrant connection failed: %w", err)
	}
	return nil
}

// EnsureCollection creates the tenant collection if it does not exist.
// 1536 dimensions, cosine distance (text-embedding-3-small).
func (q *QdrantIndex) EnsureCollection(ctx context.Context, tenantID string) error {
	collectionName := q.CollectionName(tenantID)

	_, err := q.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: collectionName,
	})
	if err == nil {
		return nil
	}

	_, err = q.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     1536,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create knowledge collection %s: %w", collectionName, err)
	}

	log.Info().Str("collection", collectionName).Msg("Created knowledge collection")
	return nil
}

// Search runs a filtered similarity search against the tenant's collection.
// The filter enforces the access rules: public chunks always match, internal
// chunks match callers without group claims, and group-restricted chunks
// require at least one of the caller's groups.
func (q *QdrantIndex) Search(ctx context.Context, tenantID string, vector []float32, topK int, userGroups []string) ([]SearchResult, error) {
	collectionName := q.CollectionName(tenantID)
	pointsClient := qdrant.NewPointsClient(q.conn)

	searchResp, err := pointsClient.Search(ctx, &qdrant.SearchPoints{
		CollectionName: collectionName,
		Vector:         vector,
		Filter:         buildACLFilter(userGroups),
		Limit:          uint64(topK),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search in Qdrant: %w", err)
	}

	results := make([]SearchResult, 0, len(searchResp.Result))
	for _, point := range searchResp.Result {
		result := SearchResult{Score: point.Score}
		if id := point.Id; id != nil {
			if u, ok := id.PointIdOptions.(*qdrant.PointId_Uuid); ok {
				result.ChunkID = u.Uuid
			}
		}
		if payload := point.Payload; payload != nil {
			result.DocumentID = payloadString(payload, "document_id")
			result.Title = payloadString(payload, "title")
			result.URL = payloadString(payload, "url")
			result.Content = payloadString(payload, "content")
		}
		results = append(results, result)
	}
	return results, nil
}

func buildACLFilter(userGroups []string) *qdrant.Filter {
	should := []*qdrant.Condition{
		keywordCondition("sensitivity", "public"),
	}

	if len(userGroups) == 0 {
		should = append(should, keywordCondition("sensitivity", "internal"))
	} else {
		for _, group := range userGroups {
			should = append(should, keywordCondition("acl_groups", group))
		}
	}

	return &qdrant.Filter{Should: should}
}

func keywordCondition(key, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{
						Keyword: value,
					},
				},
			},
		},
	}
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.Kind.(*qdrant.Value_StringValue); ok {
			return s.StringValue
		}
	}
	return ""
}
