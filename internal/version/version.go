// 包 version：构建信息，由 -ldflags "-X hospital-api/internal/version.Commit=<sha>" 注入
package version

// Commit 构建时的提交号
var Commit = "dev"
