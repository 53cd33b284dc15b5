package profile

import "strings"

// Kind is the profile_model tag stored on a user. It names exactly one of the
// profile tables.
type Kind string

const (
	KindDoctor       Kind = "Doctor"
	KindPatient      Kind = "Patient"
	KindNurse        Kind = "NurseDetail"
	KindReceptionist Kind = "ReceptionistDetail"
)

var Kinds = []Kind{KindDoctor, KindPatient, KindNurse, KindReceptionist}

func (k Kind) Valid() bool {
	switch k {
	case KindDoctor, KindPatient, KindNurse, KindReceptionist:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Label is the human name used in messages.
func (k Kind) Label() string {
	switch k {
	case KindNurse:
		return "Nurse"
	case KindReceptionist:
		return "Receptionist"
	}
	return string(k)
}

// KindNames lists the tags as plain strings, for validation messages.
func KindNames() []string {
	names := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		names = append(names, string(k))
	}
	return names
}

var roleKinds = map[string]Kind{
	"doctor":       KindDoctor,
	"patient":      KindPatient,
	"nurse":        KindNurse,
	"receptionist": KindReceptionist,
}

// KindForRole maps one of the four profile-bearing role names to its tag.
func KindForRole(roleName string) (Kind, bool) {
	k, ok := roleKinds[strings.ToLower(strings.TrimSpace(roleName))]
	return k, ok
}
