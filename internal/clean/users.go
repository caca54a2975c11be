package clean

import (
	"salesdw/internal/model"
	"salesdw/internal/transformer/builtin"
)

var userRequired = builtin.Require[model.UserSource]{Fields: []builtin.Field[model.UserSource]{
	{Name: "username", Present: func(u model.UserSource) bool { return builtin.NonBlank(u.Username) }},
	{Name: "firstName", Present: func(u model.UserSource) bool { return builtin.NonBlank(u.FirstName) }},
	{Name: "lastName", Present: func(u model.UserSource) bool { return builtin.NonBlank(u.LastName) }},
}}

// UserStage cleans source users into Users dimension rows keyed by username.
var UserStage = Stage[model.UserSource, model.User]{
	NatKey:    func(u model.UserSource) int64 { return u.ID },
	Normalize: NormalizeUser,
	Key:       UserKey,
}

// Users cleans a batch of source users.
func Users(raw []model.UserSource) Batch[model.User] { return UserStage.Apply(raw) }

// UserKey is the Users business key.
func UserKey(u model.User) string { return u.Username }

// NormalizeUser validates and normalizes one source user. Usernames are
// lower-cased so they join case-insensitively; names are title-cased. A
// present but unparseable date of birth rejects the row; an absent one is
// kept as NULL.
func NormalizeUser(s model.UserSource) (model.User, bool) {
	if _, missing := userRequired.Missing(s); missing {
		return model.User{}, false
	}
	u := model.User{
		Username:  builtin.Lower(s.Username.String),
		FirstName: builtin.TitleCase(s.FirstName.String),
		LastName:  builtin.TitleCase(s.LastName.String),
	}
	if builtin.NonBlank(s.DateOfBirth) {
		dob, ok := builtin.ParseDate(s.DateOfBirth.String)
		if !ok {
			return model.User{}, false
		}
		u.DateOfBirth = &dob
	}
	if builtin.NonBlank(s.Gender) {
		u.Gender = builtin.GenderAliases.Or(s.Gender.String, builtin.Upper)
	}
	return u, true
}
