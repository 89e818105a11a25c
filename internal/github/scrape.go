package github

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/pomilon/kognit/internal/logger"
	"github.com/pomilon/kognit/internal/markup"
	"github.com/pomilon/kognit/internal/models"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

var contributionsPattern = regexp.MustCompile(`([\d,]+)\s+contributions`)

// scraper owns one page-scraping invocation. It gets a fresh HTTP client
// every time so no session state leaks in from a failed structured-query
// attempt.
type scraper struct {
	client  *http.Client
	baseURL string
	details *DetailFetcher
	limit   int
}

func (h *Harvester) scrapeProfile(ctx context.Context, login string) (*models.ProfileRecord, error) {
	client := &http.Client{Timeout: h.Timeout}
	s := &scraper{
		client:  client,
		baseURL: h.BaseURL,
		details: &DetailFetcher{client: client, rawBase: h.RawBaseURL},
		limit:   h.DetailConcurrency,
	}
	return s.run(ctx, login)
}

func (s *scraper) run(ctx context.Context, login string) (*models.ProfileRecord, error) {
	profileURL := s.baseURL + "/" + login

	// Profile root and stars tab are independent; fetch them together.
	var mainDoc, starsDoc *html.Node
	var mainStatus int
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mainDoc, mainStatus, err = s.getDoc(gCtx, profileURL)
		return err
	})
	g.Go(func() error {
		doc, status, err := s.getDoc(gCtx, profileURL+"?tab=stars")
		if err == nil && status == http.StatusOK {
			starsDoc = doc
		}
		// The stars tab is best-effort; its loss never fails the harvest.
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching profile page: %w", err)
	}
	if mainStatus == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, login)
	}
	if mainStatus != http.StatusOK {
		return nil, fmt.Errorf("profile page returned %d", mainStatus)
	}

	rec := s.parseIdentity(mainDoc, login)
	rec.Contributions.Total = s.contributionTotal(ctx, mainDoc)

	rec.Pinned = s.scrapePinned(ctx, mainDoc)
	rec.Repositories = s.scrapeRepositories(ctx, profileURL)
	rec.Starred = scrapeStarred(starsDoc)

	return rec, nil
}

func (s *scraper) parseIdentity(doc *html.Node, login string) *models.ProfileRecord {
	rec := &models.ProfileRecord{Login: login}

	rec.Name = markup.Text(doc, markup.Locator{Tag: "span", Class: "p-name"})
	if rec.Name == "" {
		rec.Name = login
	}
	rec.Bio = markup.Text(doc, markup.Locator{Tag: "div", Class: "user-profile-bio"})

	rec.AvatarURL = markup.Attr(doc, markup.Locator{Tag: "img", Class: "avatar"}, "src")
	if rec.AvatarURL == "" {
		rec.AvatarURL = markup.Attr(doc, markup.Locator{Tag: "meta", Attr: "property", Val: "og:image"}, "content")
	}

	rec.Company = markup.Text(doc, markup.Locator{Tag: "span", Class: "p-org"})
	rec.Location = markup.Text(doc, markup.Locator{Tag: "span", Class: "p-label"})
	rec.WebsiteURL = markup.Attr(doc, markup.Locator{Tag: "a", Class: "u-url"}, "href")
	rec.TwitterHandle = markup.Attr(doc, markup.Locator{Tag: "a", Class: "Link--primary"}, "href")

	rec.Followers = followCount(doc, "tab=followers")
	rec.Following = followCount(doc, "tab=following")

	return rec
}

// followCount finds the bolded counter inside the follower/following tab
// link.
func followCount(doc *html.Node, tabFragment string) int {
	for _, a := range markup.FindAll(doc, markup.Locator{Tag: "a"}) {
		if !strings.Contains(markup.AttrValue(a, "href"), tabFragment) {
			continue
		}
		if span := markup.Find(a, markup.Locator{Tag: "span", Class: "text-bold"}); span != nil {
			return markup.Count(markup.TextContent(span))
		}
	}
	return 0
}

// contributionTotal reads the yearly contribution headline. The profile
// page often defers that block to an include-fragment, in which case the
// fragment is fetched separately.
func (s *scraper) contributionTotal(ctx context.Context, doc *html.Node) int {
	h2 := contributionHeading(doc, true)

	if h2 == nil {
		for _, frag := range markup.FindAll(doc, markup.Locator{Tag: "include-fragment"}) {
			src := markup.AttrValue(frag, "src")
			if !strings.Contains(src, "tab=contributions") {
				continue
			}
			fragDoc, status, err := s.getDoc(ctx, s.baseURL+src, "X-Requested-With", "XMLHttpRequest")
			if err != nil || status != http.StatusOK {
				logger.Warn("contribution fragment fetch failed", zap.String("src", src), zap.Error(err))
				break
			}
			h2 = contributionHeading(fragDoc, false)
			break
		}
	}

	if h2 == nil {
		return 0
	}
	if m := contributionsPattern.FindStringSubmatch(markup.TextContent(h2)); m != nil {
		return markup.Count(m[1])
	}
	return 0
}

// contributionHeading matches the h2 carrying the contributions counter.
// The fragment variant drops the mb-2 class, hence the strict flag.
func contributionHeading(doc *html.Node, strict bool) *html.Node {
	for _, h2 := range markup.FindAll(doc, markup.Locator{Tag: "h2", Class: "f4"}) {
		if !markup.HasClass(h2, "text-normal") {
			continue
		}
		if strict && !markup.HasClass(h2, "mb-2") {
			continue
		}
		return h2
	}
	return nil
}

func (s *scraper) scrapePinned(ctx context.Context, doc *html.Node) []models.RepositorySummary {
	list := markup.Find(doc, markup.Locator{Tag: "ol", Class: "js-pinned-items-reorder-list"})
	if list == nil {
		return nil
	}

	var pinned []models.RepositorySummary
	for _, item := range markup.FindAll(list, markup.Locator{Tag: "li"}) {
		link := pinnedLink(item)
		name := markup.Text(item, markup.Locator{Tag: "span", Class: "repo"})
		if name == "" {
			continue
		}

		sum := models.RepositorySummary{
			Name: name,
			URL:  s.baseURL + markup.AttrValue(link, "href"),
		}
		if desc := markup.Text(item, markup.Locator{Tag: "p", Class: "pinned-item-desc"}); desc != "" {
			sum.Description = &desc
		}
		lang := markup.Text(item, markup.Locator{Tag: "span", Attr: "itemprop", Val: "programmingLanguage"})
		if lang == "" {
			lang = "Unknown"
		}
		sum.Language = &lang
		sum.Languages = []string{lang}
		sum.Stars = stargazerCount(item)

		pinned = append(pinned, sum)
	}

	s.attachDetails(ctx, pinned)
	return pinned
}

// pinnedLink prefers the hydro-tagged repository anchor and falls back to
// the first anchor in the card.
func pinnedLink(item *html.Node) *html.Node {
	for _, a := range markup.FindAll(item, markup.Locator{Tag: "a"}) {
		if strings.Contains(markup.AttrValue(a, "data-hydro-click"), "PINNED_REPO") {
			return a
		}
	}
	return markup.Find(item, markup.Locator{Tag: "a"})
}

func stargazerCount(item *html.Node) int {
	for _, a := range markup.FindAll(item, markup.Locator{Tag: "a"}) {
		if strings.Contains(markup.AttrValue(a, "href"), "stargazers") {
			return markup.Count(markup.TextContent(a))
		}
	}
	return 0
}

func (s *scraper) scrapeRepositories(ctx context.Context, profileURL string) []models.RepositorySummary {
	// The listing pages are fetched concurrently but kept in page order so
	// the delivered repository ordering survives.
	docs := make([]*html.Node, repoListPages)
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < repoListPages; i++ {
		g.Go(func() error {
			doc, status, err := s.getDoc(gCtx, fmt.Sprintf("%s?tab=repositories&page=%d", profileURL, i+1))
			if err == nil && status == http.StatusOK {
				docs[i] = doc
			}
			return nil
		})
	}
	_ = g.Wait()

	var repos []models.RepositorySummary
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, item := range markup.FindAll(doc, markup.Locator{Tag: "li", Attr: "itemprop", Val: "owns"}) {
			if sum, ok := s.parseRepoRow(item); ok {
				repos = append(repos, sum)
			}
		}
	}

	logger.Info("scraped repository listing", zap.Int("count", len(repos)))
	s.attachDetails(ctx, repos)
	return repos
}

func (s *scraper) parseRepoRow(item *html.Node) (models.RepositorySummary, bool) {
	nameLink := markup.Find(item, markup.Locator{Tag: "a", Attr: "itemprop", Val: "name codeRepository"})
	if nameLink == nil {
		return models.RepositorySummary{}, false
	}

	sum := models.RepositorySummary{
		Name: markup.TextContent(nameLink),
		URL:  s.baseURL + markup.AttrValue(nameLink, "href"),
	}
	if desc := markup.Text(item, markup.Locator{Tag: "p", Attr: "itemprop", Val: "description"}); desc != "" {
		sum.Description = &desc
	}
	lang := markup.Text(item, markup.Locator{Tag: "span", Attr: "itemprop", Val: "programmingLanguage"})
	if lang == "" {
		lang = "N/A"
	}
	sum.Language = &lang
	sum.Languages = []string{lang}
	sum.Stars = stargazerCount(item)
	sum.PushedAt = markup.Attr(item, markup.Locator{Tag: "relative-time"}, "datetime")

	return sum, true
}

// attachDetails fans out one detail fetch per summary with bounded
// concurrency. Results are paired back by index, never by arrival order,
// and a failed fetch leaves that one summary without detail.
func (s *scraper) attachDetails(ctx context.Context, sums []models.RepositorySummary) {
	if len(sums) == 0 {
		return
	}

	details := make([]*models.RepositoryDetail, len(sums))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i := range sums {
		g.Go(func() error {
			details[i] = s.details.Fetch(gCtx, sums[i].URL)
			return nil
		})
	}
	_ = g.Wait()

	for i := range sums {
		sums[i].Detail = details[i]
	}
}

// scrapeStarred pulls starred references off the stars tab with a coarse
// h3>a row selector, capped at 10. The listing is low-fidelity: name and
// URL only, with a fixed placeholder description.
func scrapeStarred(doc *html.Node) []models.StarredRepo {
	if doc == nil {
		return nil
	}

	var starred []models.StarredRepo
	for _, h3 := range markup.FindAll(doc, markup.Locator{Tag: "h3"}) {
		a := markup.Find(h3, markup.Locator{Tag: "a"})
		if a == nil {
			continue
		}
		ownerRepo := strings.Trim(markup.AttrValue(a, "href"), "/")
		if ownerRepo == "" {
			continue
		}
		starred = append(starred, models.StarredRepo{
			NameWithOwner: ownerRepo,
			Description:   "Scraped via Web",
			URL:           "https://github.com/" + ownerRepo,
		})
		if len(starred) >= maxStarredScraped {
			break
		}
	}
	return starred
}

func (s *scraper) getDoc(ctx context.Context, pageURL string, headerKV ...string) (*html.Node, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	for i := 0; i+1 < len(headerKV); i += 2 {
		req.Header.Set(headerKV[i], headerKV[i+1])
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return doc, resp.StatusCode, nil
}
