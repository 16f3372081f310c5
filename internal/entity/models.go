package entity

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Chunk is a unit of indexed document text. Immutable once indexed.
type Chunk struct {
	ID        string
	Text      string
	Source    string
	CreatedAt time.Time
}

// ScoredChunk is a chunk with the score the vector index assigned to it.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Candidate is a retrieved chunk after the reranking pass.
// Semantic is cosine similarity in [-1,1], Lexical is Jaccard word
// overlap in [0,1], Combined is the weighted blend of the two.
type Candidate struct {
	Chunk    Chunk
	Semantic float64
	Lexical  float64
	Combined float64
}

// Turn is a single conversation entry. Ordering within a session is the
// implicit timestamp.
type Turn struct {
	Role Role
	Text string
}
