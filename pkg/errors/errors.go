package errors

import "errors"

// ErrMalformedData 数据源格式错误：缺少必需列或数值无法解析
var ErrMalformedData = errors.New("数据格式错误")

// ErrSourceUnavailable 数据源不可达或返回非成功状态
var ErrSourceUnavailable = errors.New("数据源不可用")
