package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供网关请求日志的公共字段。
func RequestFields(requestID, resource, method, path string, status int) logrus.Fields {
	return logrus.Fields{
		"action":     "gateway",
		"request_id": requestID,
		"resource":   resource,
		"method":     method,
		"path":       path,
		"status":     status,
	}
}

// ResourceFields 提供 manager 回源日志的公共字段。
func ResourceFields(resource, operation, url string) logrus.Fields {
	return logrus.Fields{
		"action":   "upstream",
		"resource": resource,
		"op":       operation,
		"url":      url,
	}
}
