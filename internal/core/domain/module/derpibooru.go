package module

import (
	"context"
	"encoding/json"
	"fmt"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/port"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DerpibooruURL = "https://derpibooru.org"

	derpibooruFilter = 141911
	defaultSearch    = "safe"

	searchBroken = "Something broke."
	searchEmpty  = "Didn't find anything."
)

type derpibooruResult struct {
	Search []struct {
		ID              int64 `json:"id"`
		Representations struct {
			Large string `json:"large"`
		} `json:"representations"`
	} `json:"search"`
}

// Derpibooru replies with a random image matching the command's search terms.
type Derpibooru struct {
	nop
	downloader port.Downloader
	baseURL    string
}

func NewDerpibooru(r port.CommandRegistry, downloader port.Downloader, baseURL string) *Derpibooru {
	d := &Derpibooru{downloader: downloader, baseURL: strings.TrimRight(baseURL, "/")}
	r.Register("derpibooru", d.search)

	return d
}

func (d *Derpibooru) search(ctx context.Context, cmd domain.Command) (string, error) {
	query := strings.Join(cmd.Args, " ")
	if query == "" {
		query = defaultSearch
	}

	params := url.Values{}
	params.Set("filter_id", strconv.Itoa(derpibooruFilter))
	params.Set("q", query)
	params.Set("sf", "random")

	l := log.With().Str("query", query).Int64("chatId", cmd.ChatID()).Logger()

	body, err := d.downloader.Download(ctx, d.baseURL+"/search.json?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("derpibooru search failed: %w", err)
	}

	var res derpibooruResult
	if err := json.Unmarshal(body, &res); err != nil || res.Search == nil {
		l.Warn().Err(err).Msg("unexpected derpibooru response")
		return searchBroken, nil
	}

	if len(res.Search) == 0 {
		return searchEmpty, nil
	}

	hit := res.Search[0]

	return fmt.Sprintf("https:%s\n%s/%d", hit.Representations.Large, DerpibooruURL, hit.ID), nil
}
