package conversation

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"egov-bot/internal/catalog"
	"egov-bot/internal/contextutil"
	"egov-bot/internal/followup"
	"egov-bot/internal/retrieval"
	"egov-bot/internal/textutil"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_retriever.go -package=mocks egov-bot/internal/conversation Retriever

// Retriever is the slice of the hybrid retriever the context manager needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) retrieval.Result
}

// Decision says which rule of the turn-level policy produced a resolution.
// Making the path explicit keeps every degraded branch visible to tests and
// logs instead of hiding behind blanket error suppression.
type Decision int

const (
	// DecisionFreshNoHistory: first turn of a session, fresh retrieval.
	DecisionFreshNoHistory Decision = iota
	// DecisionFreshNewTopic: the classifier saw a topic shift.
	DecisionFreshNewTopic
	// DecisionFreshNoPriorContext: follow-up, but the previous turn stored
	// nothing reusable.
	DecisionFreshNoPriorContext
	// DecisionReuseStrongRef: explicit anaphora ("nó", "thủ tục này"...).
	DecisionReuseStrongRef
	// DecisionReuseShortQuery: short follow-ups are assumed referential.
	DecisionReuseShortQuery
	// DecisionReuseSimilarity: the hysteresis gate evaluated and kept the
	// previous context.
	DecisionReuseSimilarity
	// DecisionReuseDegraded: an embedding or retrieval failure collapsed
	// the check to the safe default.
	DecisionReuseDegraded
	// DecisionSwitched: the gate found a clearly better candidate.
	DecisionSwitched
)

// String returns the decision name for logs and response metadata.
func (d Decision) String() string {
	switch d {
	case DecisionFreshNoHistory:
		return "fresh_no_history"
	case DecisionFreshNewTopic:
		return "fresh_new_topic"
	case DecisionFreshNoPriorContext:
		return "fresh_no_prior_context"
	case DecisionReuseStrongRef:
		return "reuse_strong_ref"
	case DecisionReuseShortQuery:
		return "reuse_short_query"
	case DecisionReuseSimilarity:
		return "reuse_similarity"
	case DecisionReuseDegraded:
		return "reuse_degraded"
	case DecisionSwitched:
		return "switched"
	default:
		return "unknown"
	}
}

// Resolution is the context chosen for one turn.
type Resolution struct {
	Context  string
	ParentID string
	Decision Decision
}

// FreshRetrieval reports whether the resolved context came out of a new
// retrieval rather than the previous turn.
func (r Resolution) FreshRetrieval() bool {
	switch r.Decision {
	case DecisionFreshNoHistory, DecisionFreshNewTopic, DecisionFreshNoPriorContext, DecisionSwitched:
		return true
	default:
		return false
	}
}

// Policy holds the tunable thresholds of the decision core. These are
// policy constants, not structural invariants.
type Policy struct {
	// TopK is the retrieval depth for fresh lookups.
	TopK int
	// SimThreshold is the minimum query/candidate similarity for a switch.
	SimThreshold float32
	// SwitchMargin is how much better than the previous context a candidate
	// must be. Together with SimThreshold it forms a hysteresis gate that
	// prevents context flapping on marginal differences.
	SwitchMargin float32
	// MinContextLen: shorter contexts are never embedded; their similarity
	// signal is not trusted.
	MinContextLen int
	// LongQueryThreshold: queries shorter than this reuse context without a
	// similarity check.
	LongQueryThreshold int
}

// DefaultPolicy returns the tuned production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		TopK:               3,
		SimThreshold:       0.62,
		SwitchMargin:       0.15,
		MinContextLen:      50,
		LongQueryThreshold: 50,
	}
}

// strongRefPatterns detect explicit references to the prior turn's subject.
// Matched against the lowercased query.
var strongRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|[^\p{L}])nó([^\p{L}]|$)`),
	regexp.MustCompile(`hồ\s*sơ\s+(này|đó)`),
	regexp.MustCompile(`thủ\s*tục\s+(này|đó)`),
}

// Manager is the context/retrieval decision core.
type Manager struct {
	retriever Retriever
	embedder  retrieval.Embedder
	catalog   *catalog.Catalog
	policy    Policy
}

// NewManager creates a Manager. Unset policy fields fall back to their
// DefaultPolicy values individually, so a caller overriding one threshold
// keeps the defaults for the rest.
func NewManager(retriever Retriever, embedder retrieval.Embedder, cat *catalog.Catalog, policy Policy) *Manager {
	def := DefaultPolicy()
	if policy.TopK <= 0 {
		policy.TopK = def.TopK
	}
	if policy.SimThreshold <= 0 {
		policy.SimThreshold = def.SimThreshold
	}
	if policy.SwitchMargin <= 0 {
		policy.SwitchMargin = def.SwitchMargin
	}
	if policy.MinContextLen <= 0 {
		policy.MinContextLen = def.MinContextLen
	}
	if policy.LongQueryThreshold <= 0 {
		policy.LongQueryThreshold = def.LongQueryThreshold
	}
	return &Manager{retriever: retriever, embedder: embedder, catalog: cat, policy: policy}
}

// Resolve decides, for one turn, whether to reuse the previous context or
// retrieve fresh. It never returns an error: every internal failure
// collapses to a safe default and is reported through the Decision.
func (m *Manager) Resolve(ctx context.Context, history []Turn, query string) Resolution {
	logger := contextutil.LoggerFromContext(ctx)

	if len(history) == 0 {
		return m.fresh(ctx, query, DecisionFreshNoHistory)
	}

	if !followup.IsFollowUp(query) {
		return m.fresh(ctx, query, DecisionFreshNewTopic)
	}

	prev := history[len(history)-1]
	if prev.ParentID == "" || prev.Context == "" {
		return m.fresh(ctx, query, DecisionFreshNoPriorContext)
	}

	lower := strings.ToLower(query)
	for _, pattern := range strongRefPatterns {
		if pattern.MatchString(lower) {
			logger.DebugContext(ctx, "strong follow-up reference, reusing context", "parent_id", prev.ParentID)
			return Resolution{Context: prev.Context, ParentID: prev.ParentID, Decision: DecisionReuseStrongRef}
		}
	}

	if utf8.RuneCountInString(query) < m.policy.LongQueryThreshold {
		logger.DebugContext(ctx, "short follow-up query, reusing context", "parent_id", prev.ParentID)
		return Resolution{Context: prev.Context, ParentID: prev.ParentID, Decision: DecisionReuseShortQuery}
	}

	return m.similarityCheck(ctx, prev, query)
}

// fresh retrieves a new context, returning an empty resolution when
// retrieval produced nothing.
func (m *Manager) fresh(ctx context.Context, query string, decision Decision) Resolution {
	res := m.retriever.Retrieve(ctx, query, m.policy.TopK)
	if len(res.ChunkIDs) == 0 {
		return Resolution{Decision: decision}
	}

	chunk, ok := m.catalog.Chunk(res.ChunkIDs[0])
	if !ok {
		return Resolution{Decision: decision}
	}
	parentID := chunk.Parent()
	return Resolution{
		Context:  m.catalog.ProcedureText(parentID),
		ParentID: parentID,
		Decision: decision,
	}
}

// similarityCheck is the hysteresis gate for long follow-up queries: switch
// to a retrieved candidate only when it is both similar enough to the query
// and clearly better than the previous context.
func (m *Manager) similarityCheck(ctx context.Context, prev Turn, query string) Resolution {
	logger := contextutil.LoggerFromContext(ctx)
	keep := func(d Decision) Resolution {
		return Resolution{Context: prev.Context, ParentID: prev.ParentID, Decision: d}
	}

	queryEmb, err := m.embedder.Embed(ctx, query)
	if err != nil {
		logger.WarnContext(ctx, "query embedding failed, keeping previous context", "error", err)
		return keep(DecisionReuseDegraded)
	}

	prevEmb := prev.ContextEmb
	if prevEmb == nil && utf8.RuneCountInString(prev.Context) >= m.policy.MinContextLen {
		prevEmb, err = m.embedder.Embed(ctx, prev.Context)
		if err != nil {
			logger.WarnContext(ctx, "previous context embedding failed, keeping previous context", "error", err)
			return keep(DecisionReuseDegraded)
		}
	}

	res := m.retriever.Retrieve(ctx, query, m.policy.TopK)
	if len(res.ChunkIDs) == 0 {
		return keep(DecisionReuseDegraded)
	}
	chunk, ok := m.catalog.Chunk(res.ChunkIDs[0])
	if !ok {
		return keep(DecisionReuseDegraded)
	}

	candidateParent := chunk.Parent()
	if candidateParent == "" || candidateParent == prev.ParentID {
		return keep(DecisionReuseSimilarity)
	}

	candidateContext := m.catalog.ProcedureText(candidateParent)
	if utf8.RuneCountInString(candidateContext) < m.policy.MinContextLen {
		return keep(DecisionReuseSimilarity)
	}

	candidateEmb, err := m.embedder.Embed(ctx, candidateContext)
	if err != nil {
		logger.WarnContext(ctx, "candidate context embedding failed, keeping previous context", "error", err)
		return keep(DecisionReuseDegraded)
	}

	simPrev := textutil.Cosine(queryEmb, prevEmb)
	simCandidate := textutil.Cosine(queryEmb, candidateEmb)

	if simCandidate >= m.policy.SimThreshold && simCandidate-simPrev > m.policy.SwitchMargin {
		logger.InfoContext(ctx, "switched context",
			"sim_prev", simPrev, "sim_candidate", simCandidate,
			"from", prev.ParentID, "to", candidateParent)
		return Resolution{Context: candidateContext, ParentID: candidateParent, Decision: DecisionSwitched}
	}

	logger.DebugContext(ctx, "kept previous context",
		"sim_prev", simPrev, "sim_candidate", simCandidate)
	return keep(DecisionReuseSimilarity)
}
