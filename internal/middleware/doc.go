// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 目前只有訪客令牌的驗證：從請求頭或查詢參數取出令牌，
// 解析出不透明的玩家 ID 後放進請求上下文。
package middleware
