package domain

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// DefaultAlarmID selects the stock alarm in SetAlarm.
const DefaultAlarmID = "default"

// SelectTheme applies theme. The base themes are free; catalog themes must be owned.
func SelectTheme(s UserStats, theme string) (UserStats, error) {
	if theme != DefaultTheme && theme != LightTheme {
		i := slices.IndexFunc(Catalog, func(item ShopItem) bool {
			return item.Kind == ItemKindTheme && item.Value == theme
		})
		if i < 0 {
			return s, ErrUnknownItem
		}
		if !s.Owns(Catalog[i].ID) {
			return s, ErrItemNotOwned
		}
	}
	out := s.Clone()
	out.ActiveTheme = theme
	return out, nil
}

// SetAmbientSound selects the looping sound played during sessions. soundID is
// either an owned catalog sound or an uploaded ambient track; nil turns the
// ambient sound off.
func SetAmbientSound(s UserStats, soundID *string) (UserStats, error) {
	out := s.Clone()
	if soundID == nil {
		out.ActiveSound = nil
		return out, nil
	}

	if item, ok := FindItem(*soundID); ok && item.Kind == ItemKindSound {
		if !s.Owns(item.ID) {
			return s, ErrItemNotOwned
		}
		v := item.Value
		out.ActiveSound = &v
		return out, nil
	}

	audio, ok := s.findAudio(*soundID, AudioKindAmbient)
	if !ok {
		return s, ErrAudioNotFound
	}
	v := audio.Data
	out.ActiveSound = &v
	return out, nil
}

// SetAlarm selects the sound played once when a session completes. alarmID is
// DefaultAlarmID or an uploaded alarm; nil silences the alarm.
func SetAlarm(s UserStats, alarmID *string) (UserStats, error) {
	out := s.Clone()
	switch {
	case alarmID == nil:
		out.ActiveAlarm = nil
	case *alarmID == DefaultAlarmID:
		v := DefaultAlarm
		out.ActiveAlarm = &v
	default:
		audio, ok := s.findAudio(*alarmID, AudioKindAlarm)
		if !ok {
			return s, ErrAudioNotFound
		}
		v := audio.Data
		out.ActiveAlarm = &v
	}
	return out, nil
}

// ToggleSidebar flips the sidebar layout preference.
func ToggleSidebar(s UserStats) UserStats {
	out := s.Clone()
	out.SidebarOpen = !out.SidebarOpen
	return out
}

// AddCustomAudio stores an uploaded sound and returns it with its new id.
func AddCustomAudio(s UserStats, name, data string, kind AudioKind) (UserStats, CustomAudio, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return s, CustomAudio{}, NewValidationError("name", "is required", ErrEmptyContent)
	case data == "":
		return s, CustomAudio{}, NewValidationError("data", "is required", ErrEmptyContent)
	case !kind.IsValid():
		return s, CustomAudio{}, NewValidationError("kind", "must be alarm or ambient", ErrValidation)
	}

	audio := CustomAudio{ID: uuid.NewString(), Name: name, Data: data, Kind: kind}
	out := s.Clone()
	out.UploadedAudio = append(out.UploadedAudio, audio)
	return out, audio, nil
}

// DeleteCustomAudio removes an uploaded sound. If it was the active ambient
// sound or alarm, that preference is cleared too.
func DeleteCustomAudio(s UserStats, id string) (UserStats, error) {
	i := slices.IndexFunc(s.UploadedAudio, func(a CustomAudio) bool { return a.ID == id })
	if i < 0 {
		return s, ErrAudioNotFound
	}
	removed := s.UploadedAudio[i]

	out := s.Clone()
	out.UploadedAudio = slices.Delete(out.UploadedAudio, i, i+1)
	if out.ActiveSound != nil && *out.ActiveSound == removed.Data {
		out.ActiveSound = nil
	}
	if out.ActiveAlarm != nil && *out.ActiveAlarm == removed.Data {
		out.ActiveAlarm = nil
	}
	return out, nil
}

func (s UserStats) findAudio(id string, kind AudioKind) (CustomAudio, bool) {
	for _, a := range s.UploadedAudio {
		if a.ID == id && a.Kind == kind {
			return a, true
		}
	}
	return CustomAudio{}, false
}
