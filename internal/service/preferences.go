package service

import "github.com/phrazzld/focus-api/internal/domain"

// PreferencesService applies theme, sound, alarm and layout choices.
type PreferencesService struct{}

// NewPreferencesService creates a PreferencesService.
func NewPreferencesService() *PreferencesService {
	return &PreferencesService{}
}

// SelectTheme applies a base or owned theme.
func (s *PreferencesService) SelectTheme(ws *Workspace, theme string) (domain.UserStats, error) {
	return ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		return domain.SelectTheme(st, theme)
	})
}

// SetAmbientSound selects the looping sound; nil turns it off.
func (s *PreferencesService) SetAmbientSound(ws *Workspace, soundID *string) (domain.UserStats, error) {
	return ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		return domain.SetAmbientSound(st, soundID)
	})
}

// SetAlarm selects the completion alarm; nil silences it.
func (s *PreferencesService) SetAlarm(ws *Workspace, alarmID *string) (domain.UserStats, error) {
	return ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		return domain.SetAlarm(st, alarmID)
	})
}

// ToggleSidebar flips the sidebar preference.
func (s *PreferencesService) ToggleSidebar(ws *Workspace) (domain.UserStats, error) {
	return ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		return domain.ToggleSidebar(st), nil
	})
}

// AddCustomAudio stores an uploaded sound.
func (s *PreferencesService) AddCustomAudio(ws *Workspace, name, data string, kind domain.AudioKind) (domain.CustomAudio, error) {
	var created domain.CustomAudio
	_, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		out, audio, err := domain.AddCustomAudio(st, name, data, kind)
		created = audio
		return out, err
	})
	return created, err
}

// DeleteCustomAudio removes an uploaded sound.
func (s *PreferencesService) DeleteCustomAudio(ws *Workspace, id string) (domain.UserStats, error) {
	return ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		return domain.DeleteCustomAudio(st, id)
	})
}
