package chat

import "time"

// SampleThreads is the first-run content, timestamped relative to now.
func SampleThreads(now time.Time) []Thread {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	return []Thread{
		{
			ID:        "sample-1",
			Title:     "Ancient Civilisations Overview",
			CreatedAt: ago(2 * time.Hour),
			UpdatedAt: ago(30 * time.Minute),
			Messages: []Message{
				{
					ID:        "m1",
					Role:      RoleUser,
					Content:   "Give me a quick overview of ancient civilisations",
					CreatedAt: ago(2 * time.Hour),
				},
				{
					ID:        "m2",
					Role:      RoleAssistant,
					Content:   "Here’s a concise overview covering Mesopotamia, Egypt, the Indus Valley, and ancient China…",
					CreatedAt: ago(30 * time.Minute),
				},
			},
		},
		{
			ID:        "sample-2",
			Title:     "Media spend by channel",
			CreatedAt: ago(48 * time.Hour),
			UpdatedAt: ago(24 * time.Hour),
			Messages: []Message{
				{
					ID:        "m3",
					Role:      RoleUser,
					Content:   "Summarise spend by channel for Q2",
					CreatedAt: ago(48 * time.Hour),
				},
				{
					ID:        "m4",
					Role:      RoleAssistant,
					Content:   "Search ads rose 12%, social 9%, TV down 4%. Outdoor showed the strongest recovery at +15%.",
					CreatedAt: ago(24 * time.Hour),
				},
			},
		},
	}
}
