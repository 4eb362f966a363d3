package assets

import "context"

// SynthesisOptions tunes a speech request. Zero values mean vendor defaults.
type SynthesisOptions struct {
	VoiceID string
	Speed   float64
	Pitch   float64
	Format  string
}

// Speech is a synthesized voiceover. AudioURL may be a data: URL.
type Speech struct {
	AudioURL        string
	DurationSeconds float64
}

// Synthesizer turns narration into speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts SynthesisOptions) (Speech, error)
}

// Image is a generated image.
type Image struct {
	URL string
}

// ImageGenerator renders an image for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (Image, error)
}

// VerifyOptions selects the checks an ImageVerifier runs.
type VerifyOptions struct {
	MustBeTextFree bool
}

// Verification is an ImageVerifier verdict.
type Verification struct {
	IsValid      bool
	Issues       []string
	DetectedText []string
}

// ImageVerifier inspects an image.
type ImageVerifier interface {
	VerifyImageContent(ctx context.Context, url string, opts VerifyOptions) (Verification, error)
}

// UploadOptions places an upload in durable storage.
type UploadOptions struct {
	Folder   string
	PublicID string
}

// Upload is the durable location of an uploaded asset.
type Upload struct {
	URL string
}

// Storage copies media to durable storage. Upload errors should expose
// StatusCode() int so not-found sources can be told apart.
type Storage interface {
	UploadImage(ctx context.Context, url string, opts UploadOptions) (Upload, error)
	UploadAudio(ctx context.Context, dataURL string, opts UploadOptions) (Upload, error)
	// Owns reports whether url already lives in this storage.
	Owns(url string) bool
}

// Track is a background music track.
type Track struct {
	ID              string
	Title           string
	AudioURL        string
	DurationSeconds float64
}

// MusicSelection is a chosen track and where it came from.
type MusicSelection struct {
	Track  Track
	Source string
}

// MusicSelector picks a background track. A nil selection means no track.
type MusicSelector interface {
	SelectMusic(ctx context.Context, styleTags []string, durationSeconds float64, context string) (*MusicSelection, error)
}
