// Package generation defines the AI collaborator used for motivational tips,
// subject study strategies and mentor chat replies. Implementations live in
// platform packages (Gemini); this package supplies the Generator interface,
// the fallback decorator that substitutes fixed text on failure, and an
// offline implementation.
package generation
