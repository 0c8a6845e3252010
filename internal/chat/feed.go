package chat

import (
	"context"
	"strconv"
	"strings"

	"chesslounge/backend/internal/apperr"
	"chesslounge/backend/internal/store"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 30
	MaxPageSize     = 60
)

// Page is one page of the feed, newest first.
type Page struct {
	Items      []MessageView
	HasMore    bool
	NextCursor *uint
	Limit      int
	// LatestID is set on the first page only.
	LatestID *uint
	// NotModified is set when the caller's freshness tag still matches the newest message.
	// Items is empty in that case.
	NotModified bool
}

// Feed pages through the chat history by message id.
type Feed struct {
	messages store.MessageStore
	enricher enricher
}

func NewFeed(messages store.MessageStore, accounts store.AccountStore, logger *zap.Logger) *Feed {
	return &Feed{
		messages: messages,
		enricher: enricher{accounts: accounts, logger: logger},
	}
}

// List returns the page of messages strictly older than cursor. An empty cursor requests the
// first page, which honours freshnessTag.
func (f *Feed) List(ctx context.Context, cursor, limit, freshnessTag string) (Page, error) {
	before, err := ParseCursor(cursor)
	if err != nil {
		return Page{}, err
	}
	size := ParseLimit(limit)
	page := Page{Limit: size}

	if before == 0 && strings.TrimSpace(freshnessTag) != "" {
		latest, err := f.messages.Latest(ctx)
		if err != nil {
			return Page{}, err
		}
		if latest != nil && TagMatches(freshnessTag, latest.ID) {
			id := latest.ID
			page.LatestID = &id
			page.NotModified = true
			return page, nil
		}
	}

	msgs, err := f.messages.ListBefore(ctx, before, size)
	if err != nil {
		return Page{}, err
	}

	page.Items = f.enricher.enrich(ctx, msgs)
	page.HasMore = len(msgs) == size
	if page.HasMore {
		next := msgs[len(msgs)-1].ID
		page.NextCursor = &next
	}
	if before == 0 && len(msgs) > 0 {
		latest := msgs[0].ID
		page.LatestID = &latest
	}
	return page, nil
}

// ParseCursor parses a message id. An empty string means no cursor and yields 0.
func ParseCursor(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid cursor.")
	}
	return uint(id), nil
}

// ParseLimit clamps a page size to [1, MaxPageSize]. Missing or non-numeric input yields
// DefaultPageSize.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPageSize
	}
	return min(max(n, 1), MaxPageSize)
}

// ETag formats a message id as a strong entity tag.
func ETag(id uint) string {
	return `"` + strconv.FormatUint(uint64(id), 10) + `"`
}

// TagMatches reports whether an If-None-Match value names id. Quoted, weak and bare forms are
// accepted, as is a comma separated list.
func TagMatches(header string, id uint) bool {
	want := strconv.FormatUint(uint64(id), 10)
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		tag = strings.TrimPrefix(tag, "W/")
		tag = strings.Trim(tag, `"`)
		if tag == want {
			return true
		}
	}
	return false
}
