package config

// SafeErrorMessage 生产（release）模式下隐藏内部错误详情，仅返回兜底提示；
// debug 模式或配置未初始化时返回原始错误，方便开发排查
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
