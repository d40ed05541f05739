package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/common"
	"github.com/omerch/updatescout/internal/interfaces"
	"github.com/omerch/updatescout/internal/models"
	"github.com/omerch/updatescout/internal/services/devices"
	"github.com/omerch/updatescout/internal/services/evidence"
	"github.com/omerch/updatescout/internal/services/query"
	"github.com/omerch/updatescout/internal/services/search"
)

// Service runs the full advisory pipeline: parse, resolve, expand, search
// fan-out, filter, evidence extraction, prompt assembly, recommendation.
// Every stage degrades instead of failing; the service never returns an
// empty result for a non-empty question.
type Service struct {
	catalog   *devices.Catalog
	parser    *query.Parser
	builder   *search.Builder
	filter    *search.Filter
	extractor *evidence.Extractor

	searchProviders []interfaces.SearchProvider
	socialProvider  interfaces.SocialProvider
	bulletins       interfaces.BulletinProvider
	llm             interfaces.LLMService
	adviceCache     interfaces.AdviceStorage
	kvStorage       interfaces.KeyValueStorage

	searchPages    int
	dateRestrict   string
	searchTimeout  time.Duration
	cacheStaleness time.Duration
	maxEvidence    int

	logger arbor.ILogger
}

// Deps carries the collaborators the advisor orchestrates. SocialProvider,
// Bulletins, LLM, AdviceCache, and KVStorage may be nil; the pipeline
// degrades around each.
type Deps struct {
	Catalog         *devices.Catalog
	SearchProviders []interfaces.SearchProvider
	SocialProvider  interfaces.SocialProvider
	Bulletins       interfaces.BulletinProvider
	LLM             interfaces.LLMService
	AdviceCache     interfaces.AdviceStorage
	KVStorage       interfaces.KeyValueStorage
}

// NewService wires the advisory pipeline from configuration and collaborators.
func NewService(cfg *common.Config, deps Deps, logger arbor.ILogger) *Service {
	pages := cfg.Search.Pages
	if pages <= 0 {
		pages = 1
	}
	maxEvidence := cfg.Pipeline.MaxEvidence
	if maxEvidence <= 0 {
		maxEvidence = 15
	}
	return &Service{
		catalog:   deps.Catalog,
		parser:    query.NewParser(logger),
		builder:   search.NewBuilder(cfg.Pipeline.MaxQueryStrategies),
		filter:    search.NewFilter(cfg.Pipeline.ExactMatchBonus, cfg.Pipeline.MaxResults, logger),
		extractor: evidence.NewExtractor(cfg.Pipeline.MinSnippetLen, cfg.Pipeline.MaxSnippetLen, logger),

		searchProviders: deps.SearchProviders,
		socialProvider:  deps.SocialProvider,
		bulletins:       deps.Bulletins,
		llm:             deps.LLM,
		adviceCache:     deps.AdviceCache,
		kvStorage:       deps.KVStorage,

		searchPages:    pages,
		dateRestrict:   cfg.Search.DateRestrict,
		searchTimeout:  cfg.SearchTimeout(),
		cacheStaleness: cfg.CacheStaleness(),
		maxEvidence:    maxEvidence,

		logger: logger,
	}
}

// Advise answers one free-text update question. The returned advice is
// always non-nil and non-empty; Limited marks degraded runs.
func (s *Service) Advise(ctx context.Context, messageText string) (*models.UpdateAdvice, error) {
	parsed := s.parser.Parse(messageText)

	device := s.resolveDevice(parsed, messageText)
	if device == nil {
		// No device text anywhere in the message. Still answer.
		return s.limitedAdvice(models.DeviceRecord{FullName: "Unknown device", Series: "Unknown"}, parsed.VersionText), nil
	}

	if cached := s.cachedAdvice(ctx, device, parsed.VersionText); cached != nil {
		return cached, nil
	}

	variants := s.catalog.Expander().Expand(*device)
	queries := s.builder.BuildQueries(variants, parsed.VersionText)

	raw := s.fanOutSearches(ctx, queries)
	social := s.fetchSocialPosts(ctx, queries)
	raw = append(raw, socialAsResults(social)...)

	referenceQuery := strings.TrimSpace(device.FullName + " " + parsed.VersionText)
	ranked := s.filter.FilterAndRank(raw, variants, referenceQuery)

	snippets := s.extractEvidence(ranked, social)

	bulletin := s.fetchBulletin(ctx, device)

	advice := s.recommend(ctx, device, parsed.VersionText, ranked, snippets, bulletin)

	if s.adviceCache != nil {
		if err := s.adviceCache.Put(ctx, advice); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to cache advice")
		}
	}

	s.logger.Info().
		Str("device", device.FullName).
		Str("version", parsed.VersionText).
		Int("results", len(ranked)).
		Int("evidence", len(snippets)).
		Bool("limited", advice.Limited).
		Msg("Advisory pipeline completed")

	return advice, nil
}

// resolveDevice turns parsed text into a usable DeviceRecord, synthesizing
// generic records on catalog misses. Returns nil only when the message
// carried no device text at all.
func (s *Service) resolveDevice(parsed models.ParsedQuery, messageText string) *models.DeviceRecord {
	manufacturerText := parsed.ManufacturerText
	if manufacturerText == "" {
		manufacturerText = parsed.DeviceText
	}
	if manufacturerText == "" {
		manufacturerText = messageText
	}

	manufacturer := s.catalog.ResolveManufacturer(manufacturerText)
	if manufacturer == nil {
		manufacturer = s.catalog.SynthesizeGenericManufacturer(firstToken(parsed.DeviceText))
	}

	deviceText := parsed.DeviceText
	if deviceText == "" {
		return nil
	}

	device := s.catalog.ResolveDevice(manufacturer, deviceText)
	if device == nil {
		device = s.catalog.SynthesizeGenericDevice(manufacturer, deviceText)
	}
	return device
}

// cachedAdvice returns a fresh-enough cached result or nil.
func (s *Service) cachedAdvice(ctx context.Context, device *models.DeviceRecord, versionText string) *models.UpdateAdvice {
	if s.adviceCache == nil {
		return nil
	}
	cached, err := s.adviceCache.Get(ctx, device.DeviceKey, versionText)
	if err != nil {
		if !errors.Is(err, interfaces.ErrAdviceNotFound) {
			s.logger.Warn().Err(err).Msg("Advice cache lookup failed")
		}
		return nil
	}
	if time.Since(cached.GeneratedAt) > s.cacheStaleness {
		return nil
	}
	s.logger.Debug().
		Str("device", device.DeviceKey).
		Str("version", versionText).
		Msg("Serving cached advice")
	return cached
}

// fanOutSearches issues every (provider, query, page) combination
// concurrently and merges the results. Individual failures are logged and
// contribute zero results; the pipeline never aborts on a partial failure.
func (s *Service) fanOutSearches(ctx context.Context, queries []string) []models.SearchResultItem {
	type task struct {
		provider   interfaces.SearchProvider
		query      string
		queryIndex int
		page       int
	}

	var tasks []task
	for _, provider := range s.searchProviders {
		for i, q := range queries {
			for page := 1; page <= s.searchPages; page++ {
				tasks = append(tasks, task{provider: provider, query: q, queryIndex: i, page: page})
			}
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	var mu sync.Mutex
	var merged []models.SearchResultItem
	var wg sync.WaitGroup

	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
			defer cancel()

			results, err := t.provider.Search(callCtx, t.query, interfaces.SearchOptions{
				Page:         t.page,
				DateRestrict: s.dateRestrict,
			})
			if err != nil {
				s.logger.Warn().
					Str("provider", t.provider.Name()).
					Str("query", t.query).
					Err(err).
					Msg("Search variant failed, contributing zero results")
				return
			}

			for i := range results {
				results[i].SourceQueryIndex = t.queryIndex
			}

			mu.Lock()
			merged = append(merged, results...)
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	return merged
}

// fetchSocialPosts queries the social provider with the first (general
// review) query variant. Failure degrades to no posts.
func (s *Service) fetchSocialPosts(ctx context.Context, queries []string) []models.SocialPost {
	if s.socialProvider == nil || len(queries) == 0 {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()

	posts, err := s.socialProvider.SearchPosts(callCtx, queries[0], 0)
	if err != nil {
		s.logger.Warn().
			Str("provider", s.socialProvider.Name()).
			Err(err).
			Msg("Social search failed, contributing zero results")
		return nil
	}
	return posts
}

// socialAsResults converts posts into the common result shape so they pass
// through the same dedup/filter/rank path as web hits.
func socialAsResults(posts []models.SocialPost) []models.SearchResultItem {
	results := make([]models.SearchResultItem, 0, len(posts))
	for _, p := range posts {
		snippet := truncateRunes(p.Body, 300)
		results = append(results, models.SearchResultItem{
			Title:   p.Title,
			URL:     p.URL,
			Snippet: snippet,
			Source:  "reddit",
		})
	}
	return results
}

// extractEvidence runs the extractor over ranked snippets and the full
// bodies of social posts that survived filtering, capped at maxEvidence.
// Social-origin ranked items are skipped in the snippet pass so a post's
// truncated snippet and its full body don't both produce evidence.
func (s *Service) extractEvidence(ranked []models.SearchResultItem, social []models.SocialPost) []models.EvidenceSnippet {
	socialURLs := make(map[string]struct{}, len(social))
	for _, post := range social {
		socialURLs[post.URL] = struct{}{}
	}

	kept := make(map[string]struct{}, len(ranked))
	var snippets []models.EvidenceSnippet

	for _, item := range ranked {
		kept[item.URL] = struct{}{}
		if _, ok := socialURLs[item.URL]; ok {
			continue
		}
		snippets = append(snippets, s.extractor.ExtractFromText(item.Title+". "+item.Snippet, item.URL)...)
	}
	for _, post := range social {
		if _, ok := kept[post.URL]; !ok {
			continue
		}
		snippets = append(snippets, s.extractor.ExtractFromText(post.Body, post.URL)...)
	}

	if len(snippets) > s.maxEvidence {
		snippets = snippets[:s.maxEvidence]
	}
	return snippets
}

// fetchBulletin resolves the manufacturer security page. A warm copy from
// the scheduled refresh job is preferred; a live fetch is the fallback.
// Failure degrades to empty context.
func (s *Service) fetchBulletin(ctx context.Context, device *models.DeviceRecord) string {
	if s.bulletins == nil {
		return ""
	}

	var manufacturer *models.ManufacturerInfo
	makers := s.catalog.Manufacturers()
	for i := range makers {
		if makers[i].Key == device.ManufacturerKey {
			manufacturer = &makers[i]
			break
		}
	}
	if manufacturer == nil || manufacturer.SecurityURL == "" {
		return ""
	}

	if s.kvStorage != nil {
		if warm, err := s.kvStorage.Get(ctx, bulletinKey(manufacturer.Key)); err == nil && warm != "" {
			return warm
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()

	bulletin, err := s.bulletins.FetchBulletin(callCtx, *manufacturer)
	if err != nil {
		s.logger.Warn().
			Str("manufacturer", manufacturer.Key).
			Err(err).
			Msg("Bulletin fetch failed, continuing without vendor context")
		return ""
	}
	return bulletin
}

// RefreshBulletins re-fetches every known manufacturer's security page and
// stores the warm copies. Run by the scheduler; per-maker failures are
// logged and skipped.
func (s *Service) RefreshBulletins(ctx context.Context) error {
	if s.bulletins == nil || s.kvStorage == nil {
		return nil
	}

	var refreshed int
	for _, m := range s.catalog.Manufacturers() {
		if m.SecurityURL == "" {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
		bulletin, err := s.bulletins.FetchBulletin(callCtx, m)
		cancel()
		if err != nil {
			s.logger.Warn().Str("manufacturer", m.Key).Err(err).Msg("Bulletin refresh failed")
			continue
		}

		if err := s.kvStorage.Set(ctx, bulletinKey(m.Key), bulletin, "Cached security bulletin for "+m.Name); err != nil {
			s.logger.Warn().Str("manufacturer", m.Key).Err(err).Msg("Failed to store refreshed bulletin")
			continue
		}
		refreshed++
	}

	s.logger.Info().Int("refreshed", refreshed).Msg("Bulletin refresh completed")
	return nil
}

func bulletinKey(manufacturerKey string) string {
	return "bulletin:" + manufacturerKey
}

// recommend asks the LLM for a recommendation, falling back to the
// deterministic summary when the call fails or no LLM is configured.
func (s *Service) recommend(ctx context.Context, device *models.DeviceRecord, versionText string, ranked []models.SearchResultItem, snippets []models.EvidenceSnippet, bulletin string) *models.UpdateAdvice {
	advice := &models.UpdateAdvice{
		ID:          uuid.New().String(),
		Device:      *device,
		VersionText: versionText,
		Evidence:    snippets,
		Sources:     ranked,
		GeneratedAt: time.Now().UTC(),
	}

	if s.llm != nil {
		messages := buildPrompt(device, versionText, ranked, snippets, bulletin)
		text, err := s.llm.GenerateAnalysis(ctx, messages)
		if err == nil && strings.TrimSpace(text) != "" {
			advice.Recommendation = strings.TrimSpace(text)
			advice.Provider = s.llm.ProviderName()
			advice.Limited = len(snippets) == 0
			return advice
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("LLM call failed, using fallback analysis")
		}
	}

	advice.Recommendation = fallbackAnalysis(device, versionText, snippets)
	advice.Provider = "fallback"
	advice.Limited = len(snippets) == 0
	return advice
}

// limitedAdvice is the terminal degraded state: no device could be
// resolved, but the pipeline still yields a labeled, non-empty answer.
func (s *Service) limitedAdvice(device models.DeviceRecord, versionText string) *models.UpdateAdvice {
	return &models.UpdateAdvice{
		ID:             uuid.New().String(),
		Device:         device,
		VersionText:    versionText,
		Recommendation: fallbackAnalysis(&device, versionText, nil),
		Provider:       "fallback",
		Limited:        true,
		GeneratedAt:    time.Now().UTC(),
	}
}

// truncateRunes shortens s to at most max runes, never splitting a
// multi-byte character.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
