package objectstore

import "strings"

// Domain is a content-domain tag (spec §3 "Domain"). The enumeration is
// open: operators may introduce new domain strings beyond the built-ins
// without a code change, since buckets are created lazily by name.
type Domain string

const (
	Music         Domain = "Music"
	Video         Domain = "Video"
	Images        Domain = "Images"
	Graphics      Domain = "Graphics"
	Documents     Domain = "Documents"
	Spreadsheets  Domain = "Spreadsheets"
	Presentations Domain = "Presentations"
	Reports       Domain = "Reports"
	Contracts     Domain = "Contracts"
	Agreements    Domain = "Agreements"
	Policies      Domain = "Policies"
	Compliance    Domain = "Compliance"
	SocialMedia   Domain = "SocialMedia"
	Memes         Domain = "Memes"
	Messages      Domain = "Messages"
	Posts         Domain = "Posts"
	SourceCode    Domain = "SourceCode"
	Configuration Domain = "Configuration"
	Documentation Domain = "Documentation"
	Schemas       Domain = "Schemas"
	Personal      Domain = "Personal"
	Private       Domain = "Private"
	Encrypted     Domain = "Encrypted"
	Sensitive     Domain = "Sensitive"
	Research      Domain = "Research"
	Papers        Domain = "Papers"
	Studies       Domain = "Studies"
	Educational   Domain = "Educational"
	Financial     Domain = "Financial"
	Invoices      Domain = "Invoices"
	Receipts      Domain = "Receipts"
	Statements    Domain = "Statements"
	Medical       Domain = "Medical"
	HealthRecords Domain = "HealthRecords"
	Prescriptions Domain = "Prescriptions"
	LabResults    Domain = "LabResults"
	Government    Domain = "Government"
	PublicRecords Domain = "PublicRecords"
	Licenses      Domain = "Licenses"
	Permits       Domain = "Permits"

	// DefaultDomain is selected when no other rule matches (spec §4.E
	// step 5).
	DefaultDomain Domain = Documents
)

// BucketFor maps a domain to its deterministic bucket name (spec §6:
// "cim-<area>-<specifier>"). Unmapped domains fall back to
// "cim-domain-" plus the lowercased domain name (no other characters are
// changed), so new operator-defined domains still resolve to a stable
// bucket.
var bucketOverrides = map[Domain]string{
	Music:     "cim-media-music",
	Video:     "cim-media-video",
	Images:    "cim-media-images",
	Invoices:  "cim-finance-invoices",
	Documents: "cim-docs-general",
}

func BucketFor(d Domain) string {
	if name, ok := bucketOverrides[d]; ok {
		return name
	}
	return "cim-domain-" + strings.ToLower(string(d))
}

// Hints is the caller-supplied input to the domain partitioner (spec
// §4.E "Domain partitioning").
type Hints struct {
	Name        string
	MIME        string
	Preview     string
	Metadata    map[string]string // may carry "content_domain"
}

// PatternMatcher tests preview text for keyword presence. Higher
// Priority wins when multiple matchers fire (spec §4.E).
type PatternMatcher struct {
	Domain   Domain
	Keywords []string
	Priority int
}

func (m PatternMatcher) matches(preview string) bool {
	lower := strings.ToLower(preview)
	for _, kw := range m.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// DefaultPatternMatchers mirrors spec §4.E's named defaults.
func DefaultPatternMatchers() []PatternMatcher {
	return []PatternMatcher{
		{Domain: Contracts, Keywords: []string{"contract", "agreement", "hereby agree"}, Priority: 30},
		{Domain: Invoices, Keywords: []string{"invoice", "bill to", "payment due"}, Priority: 20},
		{Domain: Medical, Keywords: []string{"patient", "diagnosis", "prescription"}, Priority: 20},
		{Domain: SocialMedia, Keywords: []string{"#", "@", "post", "follow"}, Priority: 10},
	}
}

// mimeTable maps MIME prefixes/exact types to a domain.
var mimeTable = map[string]Domain{
	"audio/":                      Music,
	"video/":                      Video,
	"image/":                      Images,
	"application/pdf":             Documents,
	"application/json":            Configuration,
	"text/x-go":                   SourceCode,
	"text/markdown":               Documentation,
}

// extensionDomainTable maps lowercase extensions to a domain, used as
// priority 4 in the partitioner.
var extensionDomainTable = map[string]Domain{
	".mp3": Music, ".ogg": Music, ".flac": Music, ".wav": Music, ".aac": Music,
	".mp4": Video, ".mov": Video, ".mkv": Video, ".avi": Video,
	".png": Images, ".jpg": Images, ".jpeg": Images, ".gif": Images, ".webp": Images,
	".go": SourceCode, ".py": SourceCode, ".js": SourceCode, ".ts": SourceCode,
	".json": Configuration, ".yaml": Configuration, ".yml": Configuration, ".toml": Configuration,
	".md": Documentation, ".markdown": Documentation,
}

// Partitioner assigns a Domain to a piece of content, following the
// strict priority order in spec §4.E: explicit hint, pattern match by
// priority, MIME mapping, extension mapping, default. Pattern matchers
// are replaceable at runtime via UpdatePartitionStrategy; updates are atomic from
// the reader's perspective since readers see an immutable slice.
type Partitioner struct {
	matchers atomicMatchers
}

// NewPartitioner constructs a Partitioner seeded with
// DefaultPatternMatchers.
func NewPartitioner() *Partitioner {
	p := &Partitioner{}
	p.matchers.store(DefaultPatternMatchers())
	return p
}

// UpdatePartitionStrategy atomically replaces the pattern matchers (spec
// §4.E "update_partition_strategy").
func (p *Partitioner) UpdatePartitionStrategy(matchers []PatternMatcher) {
	p.matchers.store(matchers)
}

// Assign selects a domain for hints per the priority order in spec
// §4.E.
func (p *Partitioner) Assign(hints Hints) Domain {
	if explicit, ok := hints.Metadata["content_domain"]; ok && explicit != "" {
		return Domain(explicit)
	}

	var best *PatternMatcher
	for _, m := range p.matchers.load() {
		m := m
		if !m.matches(hints.Preview) {
			continue
		}
		if best == nil || m.Priority > best.Priority {
			best = &m
		}
	}
	if best != nil {
		return best.Domain
	}

	for prefix, domain := range mimeTable {
		if strings.HasSuffix(prefix, "/") && strings.HasPrefix(hints.MIME, prefix) {
			return domain
		}
		if hints.MIME == prefix {
			return domain
		}
	}

	ext := strings.ToLower(extOf(hints.Name))
	if domain, ok := extensionDomainTable[ext]; ok {
		return domain
	}

	return DefaultDomain
}

func extOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return name[idx:]
}
