package store

// annotationFile is the on-disk layout of the annotation file
type annotationFile struct {
	EventIDs []string            `json:"eventIds"`
	Tags     map[string][]string `json:"tags"`
}

// Annotations is a point-in-time copy of the user's markers
type Annotations struct {
	EventIDs []string            `json:"eventIds"`
	Tags     map[string][]string `json:"tags"`

	priority map[string]bool
}

// IsPriority reports whether the event is marked as priority
func (a Annotations) IsPriority(id string) bool {
	if a.priority != nil {
		return a.priority[id]
	}
	for _, e := range a.EventIDs {
		if e == id {
			return true
		}
	}
	return false
}

// TagsFor returns the tags of an event; never nil
func (a Annotations) TagsFor(id string) []string {
	tags := a.Tags[id]
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// Change describes a successful toggle, for subscribers
type Change struct {
	Kind     string   `json:"kind"`
	ID       string   `json:"id"`
	Tag      string   `json:"tag,omitempty"`
	Priority bool     `json:"priority"`
	Tags     []string `json:"tags"`
}

const (
	ChangePriority = "priority"
	ChangeTag      = "tag"
)

// dedupe keeps the first occurrence of every non-empty value
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
