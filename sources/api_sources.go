package sources

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/models"
)

// ── devto-articles ─────────────────────────────────────────────────

const devtoMax = 1000

type devtoArticle struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	TagList     []string `json:"tag_list"`
	Reactions   int      `json:"public_reactions_count"`
	Comments    int      `json:"comments_count"`
	ReadingTime int      `json:"reading_time_minutes"`
	PublishedAt string   `json:"published_at"`
	User        struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
}

func devtoDescriptor() models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:                   "devto-articles",
		DisplayName:          "DEV Community articles",
		Description:          "Latest published DEV articles with tags and reaction counts.",
		SourceURL:            "https://dev.to/api/articles",
		Enabled:              true,
		SupportedFormats:     allFormats,
		DefaultFormat:        models.FormatJSON,
		EstimatedRecordCount: 30,
		Timeout:              15 * time.Second,
		DefaultHeaders:       map[string]string{"Accept": "application/json"},
	}
}

var devtoAPI = JSONAPI[[]devtoArticle]{
	MaxLimit: devtoMax,
	MinItems: 1,
	Request: func(limit int) *engine.FetchRequest {
		q := url.Values{"per_page": {strconv.Itoa(limit)}}
		return &engine.FetchRequest{
			Method: http.MethodGet,
			URL:    "https://dev.to/api/articles?" + q.Encode(),
		}
	},
	Project: func(articles []devtoArticle) ([]models.Record, error) {
		if articles == nil {
			return nil, models.ParseError("response has no article list", nil)
		}
		records := make([]models.Record, 0, len(articles))
		for _, a := range articles {
			tags := a.TagList
			if tags == nil {
				tags = []string{}
			}
			records = append(records, models.RecordOf(
				"id", a.ID,
				"title", a.Title,
				"url", a.URL,
				"author", a.User.Name,
				"tags", tags,
				"reactions", a.Reactions,
				"comments", a.Comments,
				"readingTime", a.ReadingTime,
				"publishedAt", a.PublishedAt,
			))
		}
		return records, nil
	},
}

// ── github-repos ───────────────────────────────────────────────────

const githubMax = 100

type githubSearch struct {
	TotalCount int           `json:"total_count"`
	Items      *[]githubRepo `json:"items"`
}

type githubRepo struct {
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	UpdatedAt   string   `json:"updated_at"`
}

func githubDescriptor() models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:                   "github-repos",
		DisplayName:          "GitHub most-starred repositories",
		Description:          "Repositories with more than 10k stars, most starred first.",
		SourceURL:            "https://api.github.com/search/repositories",
		Enabled:              true,
		SupportedFormats:     []models.Format{models.FormatJSON, models.FormatCSV},
		DefaultFormat:        models.FormatJSON,
		EstimatedRecordCount: 30,
		Timeout:              15 * time.Second,
		DefaultHeaders:       map[string]string{"Accept": "application/vnd.github+json"},
	}
}

var githubAPI = JSONAPI[githubSearch]{
	MaxLimit: githubMax,
	MinItems: 1,
	Request: func(limit int) *engine.FetchRequest {
		q := url.Values{
			"q":        {"stars:>10000"},
			"sort":     {"stars"},
			"order":    {"desc"},
			"per_page": {strconv.Itoa(limit)},
		}
		return &engine.FetchRequest{
			Method:  http.MethodGet,
			URL:     "https://api.github.com/search/repositories?" + q.Encode(),
			Headers: map[string]string{"X-GitHub-Api-Version": "2022-11-28"},
		}
	},
	Project: func(res githubSearch) ([]models.Record, error) {
		if res.Items == nil {
			return nil, models.ParseError("response has no items collection", nil)
		}
		records := make([]models.Record, 0, len(*res.Items))
		for _, r := range *res.Items {
			topics := r.Topics
			if topics == nil {
				topics = []string{}
			}
			records = append(records, models.RecordOf(
				"name", r.FullName,
				"description", r.Description,
				"url", r.HTMLURL,
				"stars", r.Stars,
				"forks", r.Forks,
				"language", r.Language,
				"topics", topics,
				"updatedAt", r.UpdatedAt,
			))
		}
		return records, nil
	},
}
