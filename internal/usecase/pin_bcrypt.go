package usecase

import "golang.org/x/crypto/bcrypt"

// bcryptでPINをハッシュ化する（スタッフ登録・PIN変更用）
type BcryptPINHasher struct {
	cost int
}

func NewBcryptPINHasher(cost int) *BcryptPINHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPINHasher{cost: cost}
}

func (h *BcryptPINHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// bcryptでPINを照合する（ログイン・店長承認用）
type BcryptPINVerifier struct{}

func NewBcryptPINVerifier() *BcryptPINVerifier {
	return &BcryptPINVerifier{}
}

func (v *BcryptPINVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
