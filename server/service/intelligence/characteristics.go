// Package intelligence infers plant characteristics from species, location
// and notes, with an LLM backend and a conservative static fallback.
package intelligence

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/verdanthq/verdant/plugin/cache"
	"github.com/verdanthq/verdant/server/ai"
	"github.com/verdanthq/verdant/store"
)

// Characteristics is the inferred profile consumed by the reminder
// adjustment evaluator. It is cached in memory, never persisted.
type Characteristics struct {
	Origin         string  `json:"origin"`
	Lifecycle      string  `json:"lifecycle"`
	ColdTolerance  string  `json:"cold_tolerance"`
	WaterNeeds     string  `json:"water_needs"`
	DormancyMonths []int   `json:"dormancy_months"`
	Confidence     float64 `json:"confidence"`
	Source         string  `json:"source"`
}

// Source values.
const (
	SourceAI      = "ai"
	SourceCache   = "cache"
	SourceDefault = "default"
)

const systemPrompt = `You are a botanical expert. Analyze the plant information provided and infer key characteristics. Respond ONLY with valid JSON in this exact format:
{
  "origin": "native|non_native_adapted|non_native_not_adapted",
  "lifecycle": "annual|biennial|perennial|unknown",
  "cold_tolerance": "hardy|semi_hardy|tender",
  "water_needs": "low|moderate|high",
  "dormancy_months": [11, 12, 1, 2],
  "confidence": 0.85
}

Definitions:
- origin: Whether plant is native to the region, non-native but adapted, or non-native and not adapted
- lifecycle: Annual (1 year), biennial (2 years), perennial (multi-year), or unknown
- cold_tolerance: hardy (<-20F), semi_hardy (0-20F), tender (>32F)
- water_needs: low (drought-tolerant), moderate (regular), high (frequent watering)
- dormancy_months: List of month numbers (1-12) when plant is dormant/inactive
- confidence: 0-1 score of inference confidence

Base your inference on botanical knowledge of the species and climate context.`

// Inferrer produces plant characteristics, caching successful inferences.
type Inferrer struct {
	chat    ai.ChatCompleter
	cache   *cache.LRU
	ttl     time.Duration
	enabled bool
}

// NewInferrer creates an Inferrer. chat may be nil when AI is disabled; the
// inferrer then always returns the default profile.
func NewInferrer(chat ai.ChatCompleter, ttl time.Duration, enabled bool) *Inferrer {
	return &Inferrer{
		chat:    chat,
		cache:   cache.NewLRU(256, ttl),
		ttl:     ttl,
		enabled: enabled && chat != nil,
	}
}

// Default returns the conservative profile used whenever inference is
// unavailable. Downstream logic always receives a well-formed object.
func Default() *Characteristics {
	return &Characteristics{
		Origin:         "non_native_adapted",
		Lifecycle:      "unknown",
		ColdTolerance:  "semi_hardy",
		WaterNeeds:     "moderate",
		DormancyMonths: []int{},
		Confidence:     0.3,
		Source:         SourceDefault,
	}
}

// Infer returns characteristics for the plant, from cache when fresh, from
// the LLM otherwise, falling back to Default on any failure.
func (i *Inferrer) Infer(ctx context.Context, plant *store.Plant, userCity, hardinessZone string) *Characteristics {
	key := cacheKey(plant)
	if v, ok := i.cache.Get(key); ok {
		if chars, ok := v.(*Characteristics); ok {
			cached := *chars
			cached.Source = SourceCache
			return &cached
		}
	}

	if !i.enabled {
		return Default()
	}

	chars, err := i.inferWithAI(ctx, plant, userCity, hardinessZone)
	if err != nil {
		slog.Info("plant inference failed, using defaults", "plant", plant.DisplayName(), "error", err)
		return Default()
	}

	chars.Source = SourceAI
	i.cache.Set(key, chars, i.ttl)
	return chars
}

// InvalidateCache drops all cached inferences.
func (i *Inferrer) InvalidateCache() {
	i.cache.Clear()
}

func (i *Inferrer) inferWithAI(ctx context.Context, plant *store.Plant, userCity, hardinessZone string) (*Characteristics, error) {
	species := plant.Species
	if species == "" {
		species = plant.Name
	}
	if species == "" {
		species = "Unknown plant"
	}

	parts := []string{"Plant species: " + species}
	if plant.Location != "" {
		parts = append(parts, "Location: "+plant.Location)
	}
	if userCity != "" {
		parts = append(parts, "City: "+userCity)
	}
	if hardinessZone != "" {
		parts = append(parts, "USDA Hardiness Zone: "+hardinessZone)
	}
	if plant.Notes != "" {
		parts = append(parts, "User notes: "+truncate(plant.Notes, 200))
	}

	reply, err := i.chat.Chat(ctx, []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: strings.Join(parts, "\n")},
	})
	if err != nil {
		return nil, err
	}

	var chars Characteristics
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &chars); err != nil {
		return nil, err
	}
	sanitize(&chars)
	return &chars, nil
}

// sanitize coerces out-of-enum values to safe defaults and clamps ranges so
// the evaluator never sees a malformed profile.
func sanitize(c *Characteristics) {
	if !oneOf(c.Origin, "native", "non_native_adapted", "non_native_not_adapted") {
		c.Origin = "non_native_adapted"
	}
	if !oneOf(c.Lifecycle, "annual", "biennial", "perennial", "unknown") {
		c.Lifecycle = "unknown"
	}
	if !oneOf(c.ColdTolerance, "hardy", "semi_hardy", "tender") {
		c.ColdTolerance = "semi_hardy"
	}
	if !oneOf(c.WaterNeeds, "low", "moderate", "high") {
		c.WaterNeeds = "moderate"
	}

	months := make([]int, 0, len(c.DormancyMonths))
	for _, m := range c.DormancyMonths {
		if m >= 1 && m <= 12 {
			months = append(months, m)
		}
	}
	c.DormancyMonths = months

	if c.Confidence < 0 {
		c.Confidence = 0
	} else if c.Confidence > 1 {
		c.Confidence = 1
	}
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

// stripCodeFence removes a markdown code block wrapper when the model
// ignores the JSON-only instruction.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	var out []string
	inBlock := false
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "```") {
			inBlock = !inBlock
			continue
		}
		if inBlock {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// cacheKey hashes the inference-relevant plant fields to a fixed length.
func cacheKey(plant *store.Plant) string {
	keyString := strings.Join([]string{
		plant.Species,
		plant.Location,
		truncate(plant.Notes, 200),
		plant.Light,
	}, "|")
	sum := md5.Sum([]byte(keyString))
	return "chars:" + hex.EncodeToString(sum[:])
}
