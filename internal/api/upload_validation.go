package api

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"

	"github.com/dutchcoders/go-clamd"
	"github.com/ledongthuc/pdf"
)

// rejectionFallback 是文件接收面没有给出具体原因时的兜底提示。
const rejectionFallback = "File rejected"

// acceptedResume 是通过接收面校验后的简历内容。
type acceptedResume struct {
	data  []byte
	pages int
}

// acceptResume 执行文件接收面的全部校验：MIME 类型、大小上限、
// 读取、PDF 魔数与病毒扫描。被拒时返回第一条拒绝原因。
// reason 非空表示文件被拒（客户端错误）；err 非空表示校验本身失败。
func acceptResume(file *multipart.FileHeader, maxBytes int64, clamdAddr string) (res *acceptedResume, reason string, err error) {
	mediaType, _, parseErr := mime.ParseMediaType(file.Header.Get("Content-Type"))
	if parseErr != nil || mediaType != "application/pdf" {
		return nil, "File type must be application/pdf", nil
	}

	if maxBytes > 0 && file.Size > maxBytes {
		return nil, fmt.Sprintf("File is larger than %d bytes", maxBytes), nil
	}

	reader, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open resume file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("read resume file: %w", err)
	}

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, rejectionFallback, nil
	}

	if clamdAddr != "" {
		infected, scanErr := scanForMalware(clamdAddr, data)
		if scanErr != nil {
			return nil, "", fmt.Errorf("scan resume file: %w", scanErr)
		}
		if infected {
			return nil, "malicious file detected", nil
		}
	}

	return &acceptedResume{
		data:  data,
		pages: pdfPageCount(data),
	}, "", nil
}

// scanForMalware 将文件流送入 clamd 扫描。
func scanForMalware(clamdAddr string, data []byte) (bool, error) {
	clamdClient := clamd.NewClamd(clamdAddr)

	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := clamdClient.ScanStream(bytes.NewReader(data), abortChan)
	if err != nil {
		return false, err
	}

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return true, nil
		}
	}
	return false, nil
}

// pdfPageCount 尽力解析 PDF 并返回页数，解析失败返回 0。
// 扫描件或生成器写出的非常规 PDF 不应因此被拒。
func pdfPageCount(data []byte) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			pages = 0
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return reader.NumPage()
}
