// Package api 處理 HTTP 請求路由和處理。
//
// 這個包包含了所有的 HTTP 處理器（handlers）。
// 遊戲本身的操作走 WebSocket，這裡只負責訪客令牌發放、
// 房間概況查詢和 WebSocket 連接的升級。
package api
