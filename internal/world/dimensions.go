package world

func Width(cfg Config) float64 {
	if cfg.Width > 0 {
		return cfg.Width
	}
	return DefaultWidth
}

func Height(cfg Config) float64 {
	if cfg.Height > 0 {
		return cfg.Height
	}
	return DefaultHeight
}

func Dimensions(cfg Config) (float64, float64) {
	return Width(cfg), Height(cfg)
}

// InBounds reports whether p lies inside the closed rectangle [0,w]x[0,h].
func InBounds(p Vec2, width, height float64) bool {
	return p.X >= 0 && p.X <= width && p.Y >= 0 && p.Y <= height
}
