package tools

import "golang.org/x/crypto/bcrypt"

// PasswordEncrypt bcrypt 加密密码
func PasswordEncrypt(password string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(hashed)
}

// PasswordCompare 校验明文密码与哈希是否匹配
func PasswordCompare(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
