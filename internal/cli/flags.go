package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	Backend    string
	ModelPath  string
	ModelDir   string
	SourceLang string
	TargetLang string
	Explain    bool
	BatchFile  string
	ListModels bool
	Download   string
	Archive    bool

	// Generation flags
	MaxTokens   int
	Temperature float64

	// Engine flags
	ContextSize int
	Threads     int
	GPULayers   int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Backend:     "gguf",
		SourceLang:  "English",
		TargetLang:  "Chinese",
		MaxTokens:   512,
		Temperature: 0.1,
		ContextSize: 2048,
		Threads:     8,
		GPULayers:   -1,
	}
}
