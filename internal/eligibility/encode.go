package eligibility

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// EncodeResume 读取整份简历并返回不带 data-URI 前缀的 base64 文本。
func EncodeResume(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// StripDataURI 去掉 data-URI 前缀：丢弃第一个逗号（含）之前的内容。
// 没有逗号时原样返回。
func StripDataURI(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}
