package analysis

import (
	"strings"

	"github.com/Hara602/usnSentry/internal/model"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
)

// categories 扩展名(小写、不含点) -> 类别，启动时构建后只读
var categories = buildCategories()

func buildCategories() map[string]model.FileType {
	m := make(map[string]model.FileType)
	// 辅助函数：把一组扩展名归到同一类别
	add := func(t model.FileType, exts ...string) {
		for _, ext := range exts {
			m[ext] = t
		}
	}

	add(model.TypeDocument, "pdf", "doc", "docx", "docm", "dot", "dotx", "odt", "rtf", "txt", "text", "md", "tex", "epub", "pages", "wpd")
	add(model.TypeSpreadsheet, "xls", "xlsx", "xlsm", "xlsb", "xlt", "xltx", "ods", "csv", "tsv", "numbers")
	add(model.TypePresentation, "ppt", "pptx", "pptm", "pot", "potx", "pps", "ppsx", "odp", "key")
	add(model.TypeImage, "jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff", "webp", "svg", "ico", "heic", "heif", "raw", "cr2", "nef", "psd")
	add(model.TypeVideo, "mp4", "m4v", "mkv", "avi", "mov", "wmv", "flv", "webm", "mpg", "mpeg", "3gp", "vob")
	add(model.TypeAudio, "mp3", "wav", "flac", "aac", "ogg", "oga", "wma", "m4a", "opus", "mid", "midi", "aiff")
	add(model.TypeArchive, "zip", "rar", "7z", "tar", "gz", "gzip", "tgz", "bz2", "xz", "zst", "cab", "iso", "lz", "lzma")
	add(model.TypeCode, "go", "c", "h", "cpp", "cc", "hpp", "cs", "java", "kt", "py", "rb", "rs", "js", "mjs", "jsx", "ts", "tsx", "php", "swift", "m", "scala", "lua", "pl", "sh", "bash", "ps1", "psm1", "bat", "cmd", "vbs", "sql", "r")
	add(model.TypeMarkup, "html", "htm", "xhtml", "xml", "xsl", "xaml", "css", "scss", "less", "rst", "adoc")
	add(model.TypeExecutable, "exe", "dll", "sys", "scr", "cpl", "ocx", "msi", "msp", "com", "drv", "efi", "elf", "so", "dylib", "apk", "appx", "msix")
	add(model.TypeConfig, "ini", "cfg", "conf", "config", "json", "yaml", "yml", "toml", "env", "properties", "reg", "plist", "inf", "manifest")
	add(model.TypeDatabase, "db", "sqlite", "sqlite3", "db3", "mdb", "accdb", "sdf", "ldf", "mdf", "ndf", "dbf", "frm", "ibd", "edb", "wal", "journal")

	return m
}

// Extension 返回最后一个 "." 之后的部分 (保留大小写，带点)；没有时返回 NoExtension
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return model.NoExtension
	}
	return name[i:]
}

// Classify 推导扩展名和文件类别；匹配时不区分大小写
func Classify(name string) (string, model.FileType) {
	ext := Extension(name)
	if ext == model.NoExtension {
		return ext, model.TypeFolder
	}
	return ext, TypeOf(ext)
}

// TypeOf 按扩展名查表 (可带点)。表里没有的再查 filetype 的类型注册表
func TypeOf(ext string) model.FileType {
	key := strings.ToLower(strings.TrimPrefix(ext, "."))
	if key == "" {
		return model.TypeFolder
	}
	if t, ok := categories[key]; ok {
		return t
	}
	return fromRegistry(key)
}

// fromRegistry filetype 按 MIME 族把扩展名分组，借用它识别表外的格式
func fromRegistry(key string) model.FileType {
	kind := filetype.GetType(key)
	if kind == filetype.Unknown {
		return model.TypeOther
	}
	switch {
	case inMap(matchers.Image, kind):
		return model.TypeImage
	case inMap(matchers.Video, kind):
		return model.TypeVideo
	case inMap(matchers.Audio, kind):
		return model.TypeAudio
	case inMap(matchers.Document, kind):
		return model.TypeDocument
	case inMap(matchers.Archive, kind):
		return model.TypeArchive
	case inMap(matchers.Application, kind):
		return model.TypeExecutable
	}
	return model.TypeOther
}

func inMap(m matchers.Map, kind types.Type) bool {
	_, ok := m[kind]
	return ok
}
