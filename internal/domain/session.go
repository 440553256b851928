package domain

import "time"

// Page identifies a step of the photo-to-photo flow. The set is closed:
// navigation happens through explicit transitions, never free-form strings.
type Page string

const (
	PageUpload  Page = "upload"
	PageProcess Page = "process"
	PageResult  Page = "result"
)

// Valid reports whether p is one of the known pages.
func (p Page) Valid() bool {
	switch p {
	case PageUpload, PageProcess, PageResult:
		return true
	}
	return false
}

// Session is the per-user state carried across page transitions. It is an
// explicit serializable struct handed to each transition function; nothing
// about the flow lives in process globals.
type Session struct {
	ID          string    `json:"id"`
	CurrentPage Page      `json:"current_page"`

	ImageUploaded  bool `json:"image_uploaded"`
	ImageProcessed bool `json:"image_processed"`

	// SelectedImage is a data URI, or a hosted URL when the image host
	// re-homed the upload.
	SelectedImage    string `json:"selected_image,omitempty"`
	ImageDescription string `json:"image_description,omitempty"`
	Prompt           string `json:"prompt,omitempty"`
	SelectedStyle    string `json:"selected_style,omitempty"`
	GeneratedImage   string `json:"generated_image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns an empty session positioned on the upload page.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          id,
		CurrentPage: PageUpload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Reset clears every flow field back to its initial value. The session keeps
// its identity so the visit counter is not bumped again.
func (s *Session) Reset() {
	s.CurrentPage = PageUpload
	s.ImageUploaded = false
	s.ImageProcessed = false
	s.SelectedImage = ""
	s.ImageDescription = ""
	s.Prompt = ""
	s.SelectedStyle = ""
	s.GeneratedImage = ""
	s.UpdatedAt = time.Now().UTC()
}

// Touch records a mutation timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}
