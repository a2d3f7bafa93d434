package bot

type Color int

const (
	Red    Color = 0xC80000
	Orange       = 0xF08152
	Blue         = 0x61D1ED
	Green        = 0x00C800
	White        = 0xFFFFFF
)
