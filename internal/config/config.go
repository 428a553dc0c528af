package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"seatmark/internal/service/excel"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig     `toml:"server"`
	Data    DataConfig       `toml:"data"`
	Sheets  excel.LayerNames `toml:"sheets"`
	Marking MarkingConfig    `toml:"marking"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	// 是否记录运行历史（SQLite）
	RecordRuns bool `toml:"record_runs"`
}

// MarkingConfig 青塗り处理配置
type MarkingConfig struct {
	HighlightColor     string `toml:"highlight_color"`
	ScanTimeoutSeconds int    `toml:"scan_timeout_seconds"`
	// 精确 sheet 名不存在时按后缀（_座席番号 等）查找
	ResolveSheetSuffix bool `toml:"resolve_sheet_suffix"`
	// 下载链接有效期（分钟）
	DownloadTTLMinutes int `toml:"download_ttl_minutes"`
	// 上传文件大小上限（MB）
	MaxUploadMB int `toml:"max_upload_mb"`
}

// ScanTimeout 索引扫描超时
func (m MarkingConfig) ScanTimeout() time.Duration {
	return time.Duration(m.ScanTimeoutSeconds) * time.Second
}

// DownloadTTL 下载链接有效期
func (m MarkingConfig) DownloadTTL() time.Duration {
	if m.DownloadTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(m.DownloadTTLMinutes) * time.Minute
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:    "data",
			RecordRuns: true,
		},
		Sheets: excel.DefaultLayerNames(),
		Marking: MarkingConfig{
			HighlightColor:     excel.DefaultHighlightColor,
			ScanTimeoutSeconds: 30,
			DownloadTTLMinutes: 10,
			MaxUploadMB:        32,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 从 config.toml 加载配置并返回元信息；path 为空时使用默认路径
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, info, err
		}
		// 配置文件不存在，使用默认配置
	} else {
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	}

	applyEnv(config)
	fillDefaults(config)
	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// 环境变量覆盖（用于容器 / 本地运行）
func applyEnv(config *AppConfig) {
	if v := os.Getenv("SEATMARK_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("SEATMARK_HIGHLIGHT_COLOR"); v != "" {
		config.Marking.HighlightColor = v
	}
}

// 部分填写的 [sheets] 段落，其余名称沿用默认
func fillDefaults(config *AppConfig) {
	def := excel.DefaultLayerNames()
	if config.Sheets.Seat == "" {
		config.Sheets.Seat = def.Seat
	}
	if config.Sheets.Row == "" {
		config.Sheets.Row = def.Row
	}
	if config.Sheets.Class == "" {
		config.Sheets.Class = def.Class
	}
	if config.Marking.HighlightColor == "" {
		config.Marking.HighlightColor = excel.DefaultHighlightColor
	}
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ResolveDataDir 数据目录：绝对路径原样使用，相对路径相对于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 导出文件暂存目录
	if err := os.MkdirAll(filepath.Join(dataDir, "exports"), 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}
