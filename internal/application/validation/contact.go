package validation

import (
	"context"
	"fmt"
	"strconv"

	"fashionablylate/internal/domain/contact"
)

// CategoryChecker reports whether a category row exists.
type CategoryChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// PhoneField is the single key the three phone inputs report under.
const PhoneField = "phone"

const (
	msgPhoneRequired = "電話番号を入力してください"
	msgPhoneDigits   = "電話番号は5桁までの数字で入力してください"
	msgCategory      = "お問い合わせの種類を選択してください"
)

// contactForm mirrors contact.Input field for field so the two convert directly.
type contactForm struct {
	LastName   string `form:"last_name" validate:"required,max=255"`
	FirstName  string `form:"first_name" validate:"required,max=255"`
	Gender     string `form:"gender" validate:"required,oneof=1 2 3"`
	Email      string `form:"email" validate:"required,email,max=255"`
	Phone1     string `form:"phone1" validate:"required,digits,max=5"`
	Phone2     string `form:"phone2" validate:"required,digits,max=5"`
	Phone3     string `form:"phone3" validate:"required,digits,max=5"`
	Address    string `form:"address" validate:"required,max=255"`
	Building   string `form:"building" validate:"max=255"`
	CategoryID string `form:"category_id" validate:"required,number"`
	Detail     string `form:"detail" validate:"required,max=120"`
}

var contactMessages = map[string]string{
	"last_name.required":   "姓を入力してください",
	"last_name.max":        "姓は255文字以内で入力してください",
	"first_name.required":  "名を入力してください",
	"first_name.max":       "名は255文字以内で入力してください",
	"gender.required":      "性別を選択してください",
	"gender.oneof":         "性別を選択してください",
	"email.required":       "メールアドレスを入力してください",
	"email.email":          "メールアドレスはメール形式で入力してください",
	"email.max":            "メールアドレスは255文字以内で入力してください",
	"address.required":     "住所を入力してください",
	"address.max":          "住所は255文字以内で入力してください",
	"building.max":         "建物名は255文字以内で入力してください",
	"category_id.required": msgCategory,
	"category_id.number":   msgCategory,
	"detail.required":      "お問い合わせ内容を入力してください",
	"detail.max":           "お問合せ内容は120文字以内で入力してください",
}

var phoneParts = []string{"phone1", "phone2", "phone3"}

// Contact validates a raw contact form.
// Field rules run first; the category existence check runs only when category_id is well formed.
// PRE: categories is non-nil
// POST: Returns at most one message per field; phone part failures are reported once under PhoneField
// INVARIANT: a non-nil error means the category lookup failed, not that the input is invalid
func (v *Validator) Contact(ctx context.Context, in contact.Input, categories CategoryChecker) (Errors, error) {
	errs, err := v.check(contactForm(in), contactMessages)
	if err != nil {
		return nil, err
	}

	if _, bad := errs["category_id"]; !bad {
		id, err := strconv.ParseInt(in.CategoryID, 10, 64)
		if err != nil || id < 1 {
			errs["category_id"] = msgCategory
		} else {
			ok, err := categories.Exists(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("check category %d: %w", id, err)
			}
			if !ok {
				errs["category_id"] = msgCategory
			}
		}
	}

	mergePhoneErrors(errs, in)
	return errs, nil
}

// mergePhoneErrors replaces any per-part phone messages with one message under PhoneField.
func mergePhoneErrors(errs Errors, in contact.Input) {
	failed := false
	for _, part := range phoneParts {
		if _, ok := errs[part]; ok {
			failed = true
			delete(errs, part)
		}
	}
	if !failed {
		return
	}
	if in.Phone1 == "" && in.Phone2 == "" && in.Phone3 == "" {
		errs[PhoneField] = msgPhoneRequired
		return
	}
	errs[PhoneField] = msgPhoneDigits
}
