package servers

// ServerDescriptor describes one third-party embed source: its display
// identity, capability flags, optional access lock, and the URL
// construction rule for its host. Descriptors are static and immutable,
// defined at process start.
type ServerDescriptor struct {
	Name              string
	Description       string
	IsRecommended     bool
	HasSandboxSupport bool
	HasAds            bool
	IsLocked          bool
	Password          string // obfuscated, present iff IsLocked
	URLRule           Rule
}

// Catalog returns the curated playback source list, in display order.
// The first entry is the default server for new sessions.
func Catalog() []ServerDescriptor {
	return []ServerDescriptor{
		{
			Name:              "VidLux",
			Description:       "Fast and reliable, minimal ads",
			IsRecommended:     true,
			HasSandboxSupport: true,
			URLRule: StandardRule{
				Base:   "L2RlYm1lL3VzLnh1bGRpdi8vOnNwdHRo",
				Suffix: "ZXVydD15YWxQb3R1YT8=",
			},
		},
		{
			Name:              "Streamore",
			Description:       "Good uptime, occasional popups",
			HasSandboxSupport: true,
			HasAds:            true,
			URLRule: StandardRule{
				Base:   "L2RlYm1lL2NjLmVyb21hZXJ0cy8vOnNwdHRo",
				Suffix: "MT15YWxwb3R1YT8=",
			},
		},
		{
			Name:        "Portora",
			Description: "Movies only, high quality encodes",
			HasAds:      true,
			URLRule: MoviePathRule{
				Base:   "L3lhbHAvdGVuLmFyb3Ryb3AvLzpzcHR0aA==",
				Suffix: "bWFlcnRzLw==",
			},
		},
		{
			Name:        "CineQuery",
			Description: "Movies only, alternative host",
			URLRule: QueryIDRule{
				Base:   "PWRpP2hjdGF3L2NjLnlyZXVxZW5pYy8vOnNwdHRo",
				Suffix: "ZGVibWU9Y3JzJg==",
			},
		},
		{
			Name:        "EmberVault",
			Description: "Members only, movies, no ads",
			IsLocked:    true,
			Password:    "dGx1YXZyZWJtZQ==",
			URLRule: TMDBPrefixRule{
				Base:   "L3Yvb2kudGx1YXZkZWJtZS8vOnNwdHRo",
				Suffix: "bG10aC4=",
			},
		},
		{
			Name:              "NovaStream",
			Description:       "Large library, slower to load",
			HasSandboxSupport: true,
			URLRule: TypeQueryRule{
				Base: "L3Z0Lm1hZXJ0c2F2b24vLzpzcHR0aA==",
			},
		},
		{
			Name:        "Playdrift",
			Description: "Backup source, subtitles built in",
			HasAds:      true,
			URLRule: AltTVPathRule{
				Base: "L3BwYS50ZmlyZHlhbHAvLzpzcHR0aA==",
			},
		},
	}
}
