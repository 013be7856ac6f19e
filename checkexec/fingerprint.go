package checkexec

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/speakeasy-api/patmatch"
)

// Fingerprinter provides pattern canonicalization and hashing with caching.
// Fingerprints are stable across runs, so they serve as memo keys for
// callers that cache analysis results per arm list; Check publishes one on
// every CheckResult.
type Fingerprinter struct {
	mu    sync.RWMutex
	cache map[*patmatch.Pattern]string // pattern pointer → fingerprint hex
}

// fingerprints is the process-wide cache behind CheckResult.Fingerprint.
// Patterns are immutable, so entries never go stale.
var fingerprints = NewFingerprinter()

// NewFingerprinter creates a new fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{
		cache: make(map[*patmatch.Pattern]string, 256),
	}
}

// FingerprintPattern returns a deterministic hex fingerprint for a pattern.
// Patterns are immutable after construction, so caching by pointer is sound.
func (fp *Fingerprinter) FingerprintPattern(p *patmatch.Pattern) string {
	if p == nil {
		return "wildcard"
	}

	fp.mu.RLock()
	if sum, ok := fp.cache[p]; ok {
		fp.mu.RUnlock()
		return sum
	}
	fp.mu.RUnlock()

	var b strings.Builder
	canonicalizePattern(p, &b)
	sum := sha256.Sum256([]byte(b.String()))
	hex := fmt.Sprintf("%x", sum[:])

	fp.mu.Lock()
	fp.cache[p] = hex
	fp.mu.Unlock()

	return hex
}

// FingerprintArms returns one fingerprint covering an ordered arm list,
// including guard presence. Two match expressions with equal fingerprints
// produce byte-identical diagnostics.
func (fp *Fingerprinter) FingerprintArms(arms []patmatch.Arm) string {
	var b strings.Builder
	for i, arm := range arms {
		b.WriteString(strconv.Itoa(i))
		b.WriteByte(':')
		b.WriteString(fp.FingerprintPattern(arm.Pattern))
		if arm.Guard != nil {
			b.WriteString("+guard(")
			b.WriteString(arm.Guard.ID)
			b.WriteByte(')')
		}
		b.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum[:])
}

// Reset clears the cache.
func (fp *Fingerprinter) Reset() {
	fp.mu.Lock()
	fp.cache = make(map[*patmatch.Pattern]string, 256)
	fp.mu.Unlock()
}

// canonicalizePattern writes a canonical byte encoding of the pattern.
// Field patterns are emitted sorted by name so two record patterns naming
// the same fields in different order canonicalize identically.
func canonicalizePattern(p *patmatch.Pattern, b *strings.Builder) {
	if p == nil {
		b.WriteString("_")
		return
	}
	switch p.Kind {
	case patmatch.PatWildcard:
		b.WriteString("_")
	case patmatch.PatBinding:
		b.WriteString("bind(")
		b.WriteString(p.Name)
		b.WriteByte(',')
		canonicalizePattern(p.Sub, b)
		b.WriteByte(')')
	case patmatch.PatLiteral:
		b.WriteString("lit(")
		b.WriteString(strconv.FormatInt(p.Value, 10))
		b.WriteByte(')')
	case patmatch.PatRange:
		b.WriteString("range(")
		b.WriteString(strconv.FormatInt(p.Lo, 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(p.Hi, 10))
		if p.Inclusive {
			b.WriteString(",incl")
		}
		b.WriteByte(')')
	case patmatch.PatOr:
		b.WriteString("or(")
		for i, alt := range p.Alts {
			if i > 0 {
				b.WriteByte('|')
			}
			canonicalizePattern(alt, b)
		}
		b.WriteByte(')')
	case patmatch.PatTuple:
		b.WriteString("tuple(")
		b.WriteString(strconv.Itoa(p.RestPos))
		b.WriteByte(';')
		for i, e := range p.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			canonicalizePattern(e, b)
		}
		b.WriteByte(')')
	case patmatch.PatRecord:
		b.WriteString("record(")
		names := make([]string, len(p.Fields))
		byName := make(map[string]*patmatch.Pattern, len(p.Fields))
		for i, f := range p.Fields {
			names[i] = f.Name
			byName[f.Name] = f.Pattern
		}
		sort.Strings(names)
		for i, n := range names {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(n)
			b.WriteByte(':')
			canonicalizePattern(byName[n], b)
		}
		if p.HasRest {
			b.WriteString(",..")
		}
		b.WriteByte(')')
	case patmatch.PatVariant:
		b.WriteString("variant(")
		b.WriteString(p.Tag)
		if p.Payload != nil {
			b.WriteByte(',')
			canonicalizePattern(p.Payload, b)
		}
		b.WriteByte(')')
	}
}

// canonicalWitness yields the dedup key for a synthesized witness. The
// rendered form is already canonical: deterministic field order and domain
// formatting.
func canonicalWitness(w *Witness) string {
	return w.String()
}
