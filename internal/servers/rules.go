package servers

import (
	"fmt"

	"github.com/amberpine/flicker/pkg/types"
)

// resolveRequest carries everything a URL rule needs to build an embed URL
type resolveRequest struct {
	contentType types.ContentType
	id          string
	season      int
	episode     int
}

// Rule selects one of the embed URL construction strategies. Third-party
// hosts expose incompatible URL shapes, so each server declares exactly one
// rule. The set is closed: only the rule types in this file implement the
// unexported method, and each variant holds only the fields its strategy
// uses.
type Rule interface {
	resolve(req resolveRequest) (string, bool)
}

// StandardRule builds base + type + "/" + id, with "/season/episode"
// appended for series.
type StandardRule struct {
	Base   string // obfuscated
	Suffix string // obfuscated
}

func (r StandardRule) resolve(req resolveRequest) (string, bool) {
	base := Deobfuscate(r.Base)
	suffix := Deobfuscate(r.Suffix)
	if req.contentType == types.ContentTV {
		return fmt.Sprintf("%stv/%s/%d/%d%s", base, req.id, req.season, req.episode, suffix), true
	}
	return base + "movie/" + req.id + suffix, true
}

// MoviePathRule builds base + id + suffix. The host has no series
// endpoint, so tv resolution fails.
type MoviePathRule struct {
	Base   string // obfuscated
	Suffix string // obfuscated
}

func (r MoviePathRule) resolve(req resolveRequest) (string, bool) {
	if req.contentType != types.ContentMovie {
		return "", false
	}
	return Deobfuscate(r.Base) + req.id + Deobfuscate(r.Suffix), true
}

// QueryIDRule builds base + id + suffix where the id lands in a query
// parameter the base string opens (e.g. base ends in "?id="). Movie only.
type QueryIDRule struct {
	Base   string // obfuscated
	Suffix string // obfuscated
}

func (r QueryIDRule) resolve(req resolveRequest) (string, bool) {
	if req.contentType != types.ContentMovie {
		return "", false
	}
	return Deobfuscate(r.Base) + req.id + Deobfuscate(r.Suffix), true
}

// TMDBPrefixRule builds base + "tmdb-" + type + "-" + id + suffix.
// Movie only.
type TMDBPrefixRule struct {
	Base   string // obfuscated
	Suffix string // obfuscated
}

func (r TMDBPrefixRule) resolve(req resolveRequest) (string, bool) {
	if req.contentType != types.ContentMovie {
		return "", false
	}
	return fmt.Sprintf("%stmdb-%s-%s%s", Deobfuscate(r.Base), req.contentType, req.id, Deobfuscate(r.Suffix)), true
}

// TypeQueryRule builds base + type + "?tmdb=" + id, adding season and
// episode parameters for series.
type TypeQueryRule struct {
	Base string // obfuscated
}

func (r TypeQueryRule) resolve(req resolveRequest) (string, bool) {
	base := Deobfuscate(r.Base)
	if req.contentType == types.ContentTV {
		return fmt.Sprintf("%stv?tmdb=%s&season=%d&episode=%d", base, req.id, req.season, req.episode), true
	}
	return fmt.Sprintf("%smovie?tmdb=%s", base, req.id), true
}

// AltTVPathRule uses a query-style series endpoint but a path-style movie
// endpoint on the same host.
type AltTVPathRule struct {
	Base string // obfuscated
}

func (r AltTVPathRule) resolve(req resolveRequest) (string, bool) {
	base := Deobfuscate(r.Base)
	if req.contentType == types.ContentTV {
		return fmt.Sprintf("%stv?tmdb=%s&season=%d&episode=%d", base, req.id, req.season, req.episode), true
	}
	return base + "movie/" + req.id, true
}

// Resolve maps a server and title to a playable embed URL. The second
// return value is false when the server's rule cannot play the requested
// content type; callers must not mount a player frame in that case.
func Resolve(s ServerDescriptor, contentType types.ContentType, id string, season, episode int) (string, bool) {
	if s.URLRule == nil || id == "" {
		return "", false
	}
	return s.URLRule.resolve(resolveRequest{
		contentType: contentType,
		id:          id,
		season:      season,
		episode:     episode,
	})
}
