package extractor

import (
	"fmt"
	"regexp"
	"time"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// Named groups a template may capture. Anything else is dropped.
const (
	GroupAmount         = "amount"
	GroupYear           = "year"
	GroupMonth          = "month"
	GroupDay            = "day"
	GroupHour           = "hour"
	GroupMinute         = "minute"
	GroupSecond         = "second"
	GroupMerchant       = "merchant"
	GroupLast4          = "last4"
	GroupCardNo         = "card_no"
	GroupAvailableLimit = "available_limit"
)

var vocabulary = map[string]bool{
	GroupAmount: true, GroupYear: true, GroupMonth: true, GroupDay: true,
	GroupHour: true, GroupMinute: true, GroupSecond: true, GroupMerchant: true,
	GroupLast4: true, GroupCardNo: true, GroupAvailableLimit: true,
}

// MalformedPatternError reports a template that does not compile.
type MalformedPatternError struct {
	Pattern string
	Err     error
}

func (e *MalformedPatternError) Error() string {
	return fmt.Sprintf("malformed pattern %q: %v", e.Pattern, e.Err)
}

func (e *MalformedPatternError) Unwrap() error { return e.Err }

type compiledPattern struct {
	re  *regexp.Regexp
	err error
}

// Patterns compiles account templates in multi-line mode and caches the
// outcome, failures included, so a broken template costs one compile per
// expiry window. Safe for concurrent use.
type Patterns struct {
	cache *cache.Cache
	log   zerolog.Logger
}

func NewPatterns(expiration time.Duration, log zerolog.Logger) *Patterns {
	return &Patterns{
		cache: cache.New(expiration, 2*expiration),
		log:   log,
	}
}

// Compile returns the compiled template. Errors are *MalformedPatternError.
func (p *Patterns) Compile(pattern string) (*regexp.Regexp, error) {
	if cached, found := p.cache.Get(pattern); found {
		c := cached.(compiledPattern)
		return c.re, c.err
	}

	re, err := regexp.Compile("(?m)" + pattern)
	var c compiledPattern
	if err != nil {
		c.err = &MalformedPatternError{Pattern: pattern, Err: err}
		p.log.Warn().Err(err).Str("pattern", pattern).Msg("invalid regex pattern, skipping")
	} else {
		c.re = re
	}
	p.cache.Set(pattern, c, cache.DefaultExpiration)
	return c.re, c.err
}

// Validate compiles every template of an account and returns the malformed ones.
func (p *Patterns) Validate(account common.Account) []error {
	var errs []error
	for _, pattern := range account.MessageRegex {
		if _, err := p.Compile(pattern); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Extract returns the named groups of the first template of the account that
// matches body. Only groups that took part in the match are present.
func (p *Patterns) Extract(body string, account common.Account) (map[string]string, bool) {
	var groups map[string]string
	p.each(body, account, func(_ string, g map[string]string) bool {
		groups = g
		return true
	})
	return groups, groups != nil
}

// each calls fn with the groups of every matching template, in order, until fn
// returns true. Malformed templates are skipped.
func (p *Patterns) each(body string, account common.Account, fn func(pattern string, groups map[string]string) bool) bool {
	for _, pattern := range account.MessageRegex {
		re, err := p.Compile(pattern)
		if err != nil {
			continue
		}
		groups := matchGroups(re, body)
		if groups == nil {
			continue
		}
		if fn(pattern, groups) {
			return true
		}
	}
	return false
}

func matchGroups(re *regexp.Regexp, body string) map[string]string {
	loc := re.FindStringSubmatchIndex(body)
	if loc == nil {
		return nil
	}
	groups := map[string]string{}
	for i, name := range re.SubexpNames() {
		if name == "" || !vocabulary[name] {
			continue
		}
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		groups[name] = body[start:end]
	}
	return groups
}
