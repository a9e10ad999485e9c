package ascii

// Converter holds the stateless text/image transforms. It knows nothing about
// quotas or messaging.
type Converter struct {
	font        string
	sampleWidth int
	cacheDir    string
}

type Config struct {
	Font        string
	SampleWidth int
	CacheDir    string
}

func NewConverter(cfg Config) *Converter {
	if cfg.Font == "" {
		cfg.Font = "standard"
	}
	if cfg.SampleWidth < 10 {
		cfg.SampleWidth = 80
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "cache"
	}

	return &Converter{
		font:        cfg.Font,
		sampleWidth: cfg.SampleWidth,
		cacheDir:    cfg.CacheDir,
	}
}

func (c *Converter) Font() string {
	return c.font
}

func (c *Converter) CacheDir() string {
	return c.cacheDir
}
