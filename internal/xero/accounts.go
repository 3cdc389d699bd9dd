package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

const (
	// GeneralExpensesCode is the catch-all account used when nothing better
	// matches. Change if your chart of accounts uses a different code.
	GeneralExpensesCode = "400"

	// newAccountCodeBase is where minted account codes start counting.
	newAccountCodeBase = 4000

	// fuzzyAcceptThreshold is the minimum similarity for a fuzzy match to
	// stand in for an exact one.
	fuzzyAcceptThreshold = 0.65
)

// ResolveMode selects the account-resolution policy.
type ResolveMode int

const (
	// ExistingOnly never creates accounts. Unresolvable categories fail
	// with a ResolutionError; the strict booking path uses this so an
	// expense is never silently misfiled.
	ExistingOnly ResolveMode = iota

	// CreateAllowed mints a new expense account when no existing one
	// matches, falling back to fuzzy match and then General Expenses.
	CreateAllowed
)

// Account is one expense account from the ledger's chart of accounts.
type Account struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// AccountResolver maps free-text expense categories to stable account codes,
// preferring reuse over creation. The expense-account cache is populated by
// one full fetch on first use and lives for the process lifetime; staleness
// is an accepted tradeoff. All cache access is serialized through one mutex
// so concurrent resolutions of the same category cannot race to create
// duplicate accounts.
type AccountResolver struct {
	client *Client

	mu     sync.Mutex
	byName map[string]string   // account name -> code
	codes  map[string]struct{} // codes in use, including minted ones
}

// NewAccountResolver creates a resolver backed by the given API client.
func NewAccountResolver(client *Client) *AccountResolver {
	return &AccountResolver{
		client: client,
		byName: make(map[string]string),
		codes:  make(map[string]struct{}),
	}
}

var nonWord = regexp.MustCompile(`\W+`)

// normalizeCategory lowercases and strips all non-word characters, so
// "Office Supplies!!" and "office supplies" compare equal.
func normalizeCategory(s string) string {
	return strings.ToLower(nonWord.ReplaceAllString(s, ""))
}

// tokenSortSimilarity compares two strings word-order-insensitively: each
// side is lowercased, tokenized, and sorted before a Levenshtein-based
// similarity is computed. Returns a value in [0, 1].
func tokenSortSimilarity(a, b string) float64 {
	return strutil.Similarity(sortTokens(a), sortTokens(b), metrics.NewLevenshtein())
}

func sortTokens(s string) string {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// accountsEnvelope mirrors the Accounts wire format.
type accountsEnvelope struct {
	Accounts []struct {
		Name string          `json:"Name"`
		Type string          `json:"Type"`
		Code json.RawMessage `json:"Code"`
	} `json:"Accounts"`
}

// populateLocked fills the cache with all EXPENSE accounts. Callers must
// hold r.mu.
func (r *AccountResolver) populateLocked(ctx context.Context) error {
	if len(r.byName) > 0 {
		return nil
	}
	status, body, err := r.client.get(ctx, "/Accounts")
	if err != nil {
		return err
	}
	if !is2xx(status) {
		return fmt.Errorf("account list fetch failed (HTTP %d): %s", status, string(body))
	}

	var envelope accountsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode account list: %w", err)
	}
	for _, acc := range envelope.Accounts {
		if acc.Type != "EXPENSE" {
			continue
		}
		code := rawToString(acc.Code)
		r.byName[acc.Name] = code
		r.codes[code] = struct{}{}
	}
	return nil
}

// rawToString renders a JSON string or number account code as a plain string.
func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// Resolve turns a category into an account code according to the given mode.
func (r *AccountResolver) Resolve(ctx context.Context, category string, mode ResolveMode) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.populateLocked(ctx); err != nil {
		return "", err
	}

	norm := normalizeCategory(category)

	// 1. Exact name match against the cache, no network call.
	for name, code := range r.byName {
		if normalizeCategory(name) == norm {
			return code, nil
		}
	}

	// 2. Mint a new EXPENSE account when policy allows. A creation failure
	// (duplicate name or code, quota, validation) is not fatal here; the
	// fuzzy fallback below still runs.
	if mode == CreateAllowed {
		if code, err := r.createLocked(ctx, category); err == nil {
			return code, nil
		}
	}

	// 3. Fuzzy match against cached names.
	if bestName, bestScore := r.bestMatchLocked(category); bestScore > fuzzyAcceptThreshold {
		return r.byName[bestName], nil
	}

	// 4. Last resort depends on mode: the strict path must fail loudly.
	if mode == ExistingOnly {
		return "", &ResolutionError{Category: category, Known: r.knownNamesLocked()}
	}
	return GeneralExpensesCode, nil
}

// createLocked creates a new EXPENSE account named after the category with a
// freshly chosen unused code. Callers must hold r.mu.
func (r *AccountResolver) createLocked(ctx context.Context, category string) (string, error) {
	code := newAccountCodeBase
	for {
		s := strconv.Itoa(code)
		if _, used := r.codes[s]; !used && s != GeneralExpensesCode {
			break
		}
		code++
	}

	payload, err := json.Marshal(map[string]any{
		"Accounts": []map[string]string{{
			"Name": category,
			"Type": "EXPENSE",
			"Code": strconv.Itoa(code),
		}},
	})
	if err != nil {
		return "", err
	}

	status, body, err := r.client.postJSON(ctx, "/Accounts", payload)
	if err != nil {
		return "", err
	}
	if !is2xx(status) {
		return "", fmt.Errorf("account creation failed (HTTP %d): %s", status, string(body))
	}

	var envelope accountsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Accounts) == 0 {
		return "", fmt.Errorf("failed to decode created account: %s", string(body))
	}
	created := envelope.Accounts[0]
	createdCode := rawToString(created.Code)
	r.byName[created.Name] = createdCode
	r.codes[createdCode] = struct{}{}
	return createdCode, nil
}

// bestMatchLocked scores every cached name against the category and returns
// the best one. Callers must hold r.mu.
func (r *AccountResolver) bestMatchLocked(category string) (string, float64) {
	bestName, bestScore := "", 0.0
	for name := range r.byName {
		if score := tokenSortSimilarity(category, name); score > bestScore {
			bestName, bestScore = name, score
		}
	}
	return bestName, bestScore
}

func (r *AccountResolver) knownNamesLocked() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListExpenseAccounts returns all cached EXPENSE accounts, populating the
// cache if needed. Used upstream to present the allowed categories.
func (r *AccountResolver) ListExpenseAccounts(ctx context.Context) ([]Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.populateLocked(ctx); err != nil {
		return nil, err
	}
	accounts := make([]Account, 0, len(r.byName))
	for name, code := range r.byName {
		accounts = append(accounts, Account{Name: name, Code: code})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// CachedMapping returns a copy of the current category-to-code cache without
// populating it. Exposed for admin inspection only.
func (r *AccountResolver) CachedMapping() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	mapping := make(map[string]string, len(r.byName))
	for name, code := range r.byName {
		mapping[name] = code
	}
	return mapping
}
