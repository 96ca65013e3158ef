package validation

import "fashionablylate/internal/domain/account"

// LoginForm is the submitted login form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm is the submitted registration form.
type RegisterForm struct {
	Name     string `form:"name" validate:"required,max=255"`
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,min=8"`
}

const (
	msgEmailRequired    = "メールアドレスを入力してください"
	msgEmailFormat      = "メールアドレスは「ユーザー名@ドメイン」形式で入力してください"
	msgPasswordRequired = "パスワードを入力してください"
)

var loginMessages = map[string]string{
	"email.required":    msgEmailRequired,
	"email.email":       msgEmailFormat,
	"password.required": msgPasswordRequired,
}

var registerMessages = map[string]string{
	"name.required":     "お名前を入力してください",
	"name.max":          "お名前は255文字以内で入力してください",
	"email.required":    msgEmailRequired,
	"email.email":       msgEmailFormat,
	"email.max":         "メールアドレスは255文字以内で入力してください",
	"password.required": msgPasswordRequired,
	"password.min":      "パスワードは8文字以上で入力してください",
}

// Login validates the login form.
func (v *Validator) Login(f LoginForm) (Errors, error) {
	return v.check(f, loginMessages)
}

// Register validates the registration form.
// The password minimum follows account.MinPasswordLength.
func (v *Validator) Register(f RegisterForm) (Errors, error) {
	errs, err := v.check(f, registerMessages)
	if err != nil {
		return nil, err
	}
	if _, bad := errs["password"]; !bad && len([]rune(f.Password)) < account.MinPasswordLength {
		errs["password"] = registerMessages["password.min"]
	}
	return errs, nil
}
