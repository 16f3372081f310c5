package embedding

import (
	"context"
	"math"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// mockDimension matches the chunks.embedding column so mock mode also
// works against a real database.
const mockDimension = 768

// MockConnector produces deterministic vectors without an external
// service: a hashed byte projection, L2-normalized. Identical texts get
// identical vectors, which is all the pipeline contract requires.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding text", zap.Int("text_length", len(text)))

	vec := make([]float32, mockDimension)
	for i, b := range []byte(text) {
		vec[(i+int(b))%mockDimension] += float32(int(b%13) - 6)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}
