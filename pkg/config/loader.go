package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gonewx/battleskill/pkg/embedded"
)

// readConfigData 读取配置文件内容
//
// 优先读取磁盘上的文件（便于策划直接修改），
// 磁盘上不存在时退回到嵌入的默认数据。
func readConfigData(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if embedded.Exists(path) {
		return embedded.ReadFile(path)
	}
	return nil, fmt.Errorf("%s not found on disk or in embedded data: %w", path, err)
}

// ReadDataFile 读取数据目录中的任意文件（音频、图片、技能文档），规则与配置文件相同
func ReadDataFile(path string) ([]byte, error) {
	return readConfigData(path)
}
