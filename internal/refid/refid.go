package refid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New は「PFX-yyyymmdd-8hex」形式の業務番号を作る。
// 例: RET-20260901-a3f29c1d
func New(prefix string, now time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		//乱数が取れない環境ではナノ秒で代用
		return fmt.Sprintf("%s-%s-%08x", prefix, now.Format("20060102"), now.UnixNano()&0xffffffff)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), hex.EncodeToString(buf))
}
