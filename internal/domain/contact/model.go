package contact

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Gender is the enumerated gender column.
type Gender int

const (
	GenderMale   Gender = 1
	GenderFemale Gender = 2
	GenderOther  Gender = 3
)

// UnselectedLabel is shown for unknown genders and missing categories.
const UnselectedLabel = "未選択"

// Genders lists the selectable values in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

var genderLabels = map[Gender]string{
	GenderMale:   "男性",
	GenderFemale: "女性",
	GenderOther:  "その他",
}

// Label returns the display text. Any value outside 1..3 maps to UnselectedLabel.
// INVARIANT: never panics
func (g Gender) Label() string {
	if l, ok := genderLabels[g]; ok {
		return l
	}
	return UnselectedLabel
}

// Valid reports whether g is one of the selectable values.
func (g Gender) Valid() bool {
	_, ok := genderLabels[g]
	return ok
}

// PhoneSeparator joins the three phone parts.
const PhoneSeparator = "-"

var (
	ErrInvalidGender   = errors.New("gender must be 1, 2 or 3")
	ErrInvalidCategory = errors.New("category_id must be a positive integer")
)

// Contact is one persisted visitor inquiry.
type Contact struct {
	ID         int64
	CategoryID int64
	FirstName  string
	LastName   string
	Gender     Gender
	Email      string
	Tell       string
	Address    string
	Building   string
	Detail     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName renders family name first.
func (c Contact) FullName() string {
	return c.LastName + " " + c.FirstName
}

// Input is the raw contact form as typed by the visitor.
type Input struct {
	LastName   string
	FirstName  string
	Gender     string
	Email      string
	Phone1     string
	Phone2     string
	Phone3     string
	Address    string
	Building   string
	CategoryID string
	Detail     string
}

// Submission is a normalized contact record awaiting store.
// Tell is already joined.
type Submission struct {
	CategoryID int64
	FirstName  string
	LastName   string
	Gender     Gender
	Email      string
	Tell       string
	Address    string
	Building   string
	Detail     string
}

// Draft is the server-held in-progress submission.
// Input is always the last thing the visitor typed; Submission is set only after a successful confirm.
type Draft struct {
	Input      Input
	Submission *Submission
}

// Confirmed reports whether the draft passed confirm.
func (d *Draft) Confirmed() bool {
	return d != nil && d.Submission != nil
}

// Normalize converts validated raw input into a Submission, joining the phone parts.
// PRE: in has passed validation
// POST: Returns a Submission or a parse error for gender/category
func (in Input) Normalize() (Submission, error) {
	g, err := strconv.Atoi(in.Gender)
	if err != nil || !Gender(g).Valid() {
		return Submission{}, ErrInvalidGender
	}
	cat, err := strconv.ParseInt(in.CategoryID, 10, 64)
	if err != nil || cat < 1 {
		return Submission{}, ErrInvalidCategory
	}
	return Submission{
		CategoryID: cat,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Gender:     Gender(g),
		Email:      in.Email,
		Tell:       JoinPhone(in.Phone1, in.Phone2, in.Phone3),
		Address:    in.Address,
		Building:   in.Building,
		Detail:     in.Detail,
	}, nil
}

// Input reconstructs the raw form from a Submission, re-splitting the phone.
func (s Submission) Input() Input {
	p1, p2, p3 := SplitPhone(s.Tell)
	return Input{
		LastName:   s.LastName,
		FirstName:  s.FirstName,
		Gender:     strconv.Itoa(int(s.Gender)),
		Email:      s.Email,
		Phone1:     p1,
		Phone2:     p2,
		Phone3:     p3,
		Address:    s.Address,
		Building:   s.Building,
		CategoryID: strconv.FormatInt(s.CategoryID, 10),
		Detail:     s.Detail,
	}
}

// Contact builds the row to insert.
func (s Submission) Contact(now time.Time) Contact {
	return Contact{
		CategoryID: s.CategoryID,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		Gender:     s.Gender,
		Email:      s.Email,
		Tell:       s.Tell,
		Address:    s.Address,
		Building:   s.Building,
		Detail:     s.Detail,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// FullName renders family name first.
func (s Submission) FullName() string {
	return s.LastName + " " + s.FirstName
}

// JoinPhone joins three parts with hyphens.
func JoinPhone(p1, p2, p3 string) string {
	return strings.Join([]string{p1, p2, p3}, PhoneSeparator)
}

// SplitPhone is the inverse of JoinPhone. Missing parts come back empty;
// anything after the second separator stays in the third part.
func SplitPhone(tell string) (string, string, string) {
	parts := strings.SplitN(tell, PhoneSeparator, 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[0], parts[1], parts[2]
}
