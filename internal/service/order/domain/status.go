package domain

// Status 定义了订单的生命周期状态。
// 主流程: PENDING → PROCESSING → SHIPPED → DELIVERED → COMPLETED。
// 旁路状态可以从任何非终态进入；ON_HOLD / BACKORDERED 可以回到主流程。
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCompleted  Status = "COMPLETED"

	StatusCancelled   Status = "CANCELLED"
	StatusReturned    Status = "RETURNED"
	StatusRefunded    Status = "REFUNDED"
	StatusFailed      Status = "FAILED"
	StatusOnHold      Status = "ON_HOLD"
	StatusBackordered Status = "BACKORDERED"
)

// mainFlowRank 用于判断主流程上的前进方向，不允许回退。
var mainFlowRank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
	StatusCompleted:  4,
}

var sideBranches = map[Status]struct{}{
	StatusCancelled:   {},
	StatusReturned:    {},
	StatusRefunded:    {},
	StatusFailed:      {},
	StatusOnHold:      {},
	StatusBackordered: {},
}

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusCancelled: {},
	StatusReturned:  {},
	StatusRefunded:  {},
	StatusFailed:    {},
}

func ToStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := mainFlowRank[status]; ok {
		return status, nil
	}
	if _, ok := sideBranches[status]; ok {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// IsTerminal 终态不再有后续流转。
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// CanTransitionTo 判断一次流转是否合法。
func (s Status) CanTransitionTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	if s == target {
		return false
	}

	// 任何非终态都可以进入旁路状态
	if _, ok := sideBranches[target]; ok {
		return true
	}

	// 挂起/缺货 回到主流程，从 PROCESSING 继续
	if s == StatusOnHold || s == StatusBackordered {
		return target == StatusProcessing
	}

	// 主流程只允许向前
	from, okFrom := mainFlowRank[s]
	to, okTo := mainFlowRank[target]
	return okFrom && okTo && to > from
}

// 角色常量来自身份协作方颁发的主体。
const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

// Principal 是身份协作方从凭证解析出的调用主体。
type Principal struct {
	UserID               int64
	Role                 string
	CanModifyOrderStatus bool // 仅对 agent 有意义，外部账户属性
}

// buyerAllowedTargets 买家只能把订单改成这几个状态。
var buyerAllowedTargets = map[Status]struct{}{
	StatusCancelled: {},
	StatusReturned:  {},
	StatusCompleted: {},
}

// AuthorizeTransition 判断主体是否有权把订单流转到 target。
// 只做授权，不校验流转本身是否合法。
func AuthorizeTransition(p Principal, target Status) error {
	switch p.Role {
	case RoleAdmin:
		return nil
	case RoleAgent:
		if p.CanModifyOrderStatus {
			return nil
		}
		return ErrUnauthorized
	case RoleUser:
		if _, ok := buyerAllowedTargets[target]; ok {
			return nil
		}
		return ErrUnauthorized
	default:
		return ErrUnauthorized
	}
}
