// Package build emits the date and time of the build.
package build

import (
	"context"
	"fmt"
	"time"

	"github.com/milan604/vergen/pkg/utils"
	"github.com/milan604/vergen/pkg/vergen"
)

// Build configures the build date and timestamp keys.
type Build struct {
	Date      bool
	Timestamp bool
	// UseLocal formats values in the local time zone instead of UTC.
	UseLocal bool

	now func() time.Time
}

// AllBuild enables every build key.
func AllBuild() *Build {
	return &Build{Date: true, Timestamp: true}
}

func (b *Build) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

func (b *Build) enabled() bool { return b.Date || b.Timestamp }

// AddEntries implements vergen.Provider.
func (b *Build) AddEntries(_ context.Context, idempotent bool, e *vergen.Entries) error {
	if !b.enabled() {
		return nil
	}
	sde, fromSDE, err := utils.LookupSourceDateEpoch()
	if err != nil {
		return fmt.Errorf("build timestamp: %w", err)
	}
	// SOURCE_DATE_EPOCH stays in UTC whatever the host zone.
	ts := sde
	if !fromSDE {
		ts = utils.InZone(b.clock(), b.UseLocal)
	}

	if b.Date {
		b.add(e, vergen.BuildDate, utils.FormatDate(ts), idempotent && !fromSDE)
	}
	if b.Timestamp {
		b.add(e, vergen.BuildTimestamp, utils.FormatTimestamp(ts), idempotent && !fromSDE)
	}
	return nil
}

func (b *Build) add(e *vergen.Entries, key vergen.Key, value string, placeholder bool) {
	switch {
	case e.AddOverride(key):
	case placeholder:
		e.AddDefaultEntry(key)
	default:
		e.AddEntry(key, value)
	}
}

// AddDefaultEntries implements vergen.Provider.
func (b *Build) AddDefaultEntries(cfg vergen.DefaultConfig, e *vergen.Entries) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	if b.Date {
		e.AddDefaultEntry(vergen.BuildDate)
	}
	if b.Timestamp {
		e.AddDefaultEntry(vergen.BuildTimestamp)
	}
	return nil
}
