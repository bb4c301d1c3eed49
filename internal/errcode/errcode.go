package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：提交前即可判定的客户端错误（校验失败、文件被拒）
// - 5xxx：提交过程中的系统/上游错误（需要终止本次提交）
const (
	OK               = 0
	ValidationFailed = 4001
	FileRejected     = 4002
	EncodingFailed   = 5001
	UpstreamFailed   = 5002
)
