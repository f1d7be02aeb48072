package service

// Notifier 实时事件推送接口
// 事件投递为尽力而为：发送失败只记录日志，绝不影响已提交的业务状态。
// 通过构造函数注入（而非全局单例），测试可替换为假实现。
type Notifier interface {
	// EmitToUser 向指定用户的私有频道推送事件
	EmitToUser(userID, event string, payload interface{})
	// EmitToTopic 向主题频道的所有订阅者推送事件
	EmitToTopic(slug, event string, payload interface{})
}

// NopNotifier 空实现，未接入实时推送时使用
type NopNotifier struct{}

func (NopNotifier) EmitToUser(string, string, interface{})  {}
func (NopNotifier) EmitToTopic(string, string, interface{}) {}
