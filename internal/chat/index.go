package chat

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	BucketToday     = "Today"
	BucketPrevious7 = "Previous 7 Days"

	emptyPreview = "Empty chat"
	day          = 24 * time.Hour
)

// Bucket is a labelled group of threads in sidebar order.
type Bucket struct {
	Label   string   `json:"label"`
	Threads []Thread `json:"threads"`
}

// Filter keeps threads whose title contains query, ignoring case. The query
// is matched as given, whitespace included; only "" matches everything.
func Filter(threads []Thread, query string) []Thread {
	if query == "" {
		return threads
	}
	q := strings.ToLower(query)
	out := make([]Thread, 0, len(threads))
	for _, t := range threads {
		if strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, t)
		}
	}
	return out
}

// SortByRecent returns a copy ordered by updatedAt, newest first.
func SortByRecent(threads []Thread) []Thread {
	out := slices.Clone(threads)
	slices.SortStableFunc(out, func(a, b Thread) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

// Group buckets threads by the age of updatedAt: Today, Previous 7 Days, then
// one bucket per month name in first-seen order. Months from different years
// share a bucket. Empty buckets are omitted.
func Group(threads []Thread, now time.Time) []Bucket {
	var today, previous []Thread
	var months []Bucket
	monthIdx := map[string]int{}

	for _, t := range SortByRecent(threads) {
		age := now.Sub(t.UpdatedAt)
		switch {
		case age < day:
			today = append(today, t)
		case age < 7*day:
			previous = append(previous, t)
		default:
			label := t.UpdatedAt.In(now.Location()).Month().String()
			i, ok := monthIdx[label]
			if !ok {
				i = len(months)
				monthIdx[label] = i
				months = append(months, Bucket{Label: label})
			}
			months[i].Threads = append(months[i].Threads, t)
		}
	}

	groups := make([]Bucket, 0, len(months)+2)
	if len(today) > 0 {
		groups = append(groups, Bucket{Label: BucketToday, Threads: today})
	}
	if len(previous) > 0 {
		groups = append(groups, Bucket{Label: BucketPrevious7, Threads: previous})
	}
	return append(groups, months...)
}

// Preview is the one-line sidebar summary: last message (truncated) and its age.
func Preview(t Thread, now time.Time) string {
	content, when := emptyPreview, t.UpdatedAt
	if last, ok := t.Last(); ok {
		content, when = last.Content, last.CreatedAt
	}
	return Truncate(content, titleLimit) + " • " + RelativeTime(when, now)
}

// RelativeTime renders the age of ts as "Ns ago", "Nm ago", "Nh ago",
// "Yesterday", "Nd ago" or a M/D/YYYY date.
func RelativeTime(ts, now time.Time) string {
	sec := int64(now.Sub(ts) / time.Second)
	if sec < 60 {
		return fmt.Sprintf("%ds ago", sec)
	}
	mins := sec / 60
	if mins < 60 {
		return fmt.Sprintf("%dm ago", mins)
	}
	hr := mins / 60
	if hr < 24 {
		return fmt.Sprintf("%dh ago", hr)
	}
	days := hr / 24
	if days == 1 {
		return "Yesterday"
	}
	if days < 7 {
		return fmt.Sprintf("%dd ago", days)
	}
	return ts.In(now.Location()).Format("1/2/2006")
}

type SidebarItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SidebarGroup struct {
	Label string        `json:"label"`
	Items []SidebarItem `json:"items"`
}

// Sidebar filters, groups and previews threads in one pass.
func Sidebar(threads []Thread, query string, now time.Time) []SidebarGroup {
	buckets := Group(Filter(threads, query), now)
	out := make([]SidebarGroup, 0, len(buckets))
	for _, b := range buckets {
		g := SidebarGroup{Label: b.Label, Items: make([]SidebarItem, 0, len(b.Threads))}
		for _, t := range b.Threads {
			g.Items = append(g.Items, SidebarItem{
				ID:        t.ID,
				Title:     t.Title,
				Preview:   Preview(t, now),
				UpdatedAt: t.UpdatedAt,
			})
		}
		out = append(out, g)
	}
	return out
}
