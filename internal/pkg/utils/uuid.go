/*
 * @author: sun977
 * @date: 2026.07.14
 * @description: uuid工具包
 * @func: 提供uuid生成、校验等常用工具函数
 */

package utils

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// UUID格式正则表达式
var (
	// 标准UUID格式: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	// 简化UUID格式: xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx
	uuidSimpleRegex = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
)

// GenerateUUID 生成UUID v4（基于随机数）
// 返回标准格式的UUID字符串，如：550e8400-e29b-41d4-a716-446655440000
func GenerateUUID() (string, error) {
	// 生成16字节的随机数
	uuid := make([]byte, 16)
	_, err := rand.Read(uuid)
	if err != nil {
		return "", fmt.Errorf("生成随机数失败: %v", err)
	}

	// 设置版本号（第7字节的高4位设为0100，表示版本4）
	uuid[6] = (uuid[6] & 0x0f) | 0x40

	// 设置变体（第9字节的高2位设为10）
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	// 格式化为标准UUID字符串
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16]), nil
}

// GenerateShortUUID 生成短UUID（取前8位）
// 注意：短UUID存在碰撞风险，仅适用于对唯一性要求不高的场景（如会话标识、请求追踪）
func GenerateShortUUID() (string, error) {
	uuid, err := GenerateUUID()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(uuid, "-", "")[:8], nil
}

// IsValidUUID 校验UUID格式是否有效
// 支持标准格式（带连字符）和简化格式（不带连字符）
func IsValidUUID(uuid string) bool {
	if uuid == "" {
		return false
	}
	if uuidRegex.MatchString(uuid) {
		return true
	}
	return uuidSimpleRegex.MatchString(uuid)
}
