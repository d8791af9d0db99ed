package rule

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"bazaar/internal/service/notification/domain"
)

// CELRoutingPolicy 用 CEL 表达式描述"什么事件通知给谁"。
// 规则来自配置，表达式里可用的变量：
//
//	event      string  事件名，例如 "order.placed"
//	actor_role string  触发动作的角色
//	terminal   bool    订单是否进入终态
//
// 命中的每条规则把自己的 audience（如 "role:admin"）追加进结果。
type CELRoutingPolicy struct {
	rules []compiledRule
}

type compiledRule struct {
	program  cel.Program
	audience string
}

// RoutingRule 是一条未编译的路由规则。
type RoutingRule struct {
	Match    string
	Audience string
}

// NewCELRoutingPolicy 在启动时一次性编译全部表达式，
// 任何一条编译失败都直接报错，避免运行时才发现规则写错。
func NewCELRoutingPolicy(rules []RoutingRule) (*CELRoutingPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("event", cel.StringType),
		cel.Variable("actor_role", cel.StringType),
		cel.Variable("terminal", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("cel.NewEnv: %w", err)
	}

	policy := &CELRoutingPolicy{}
	for _, r := range rules {
		ast, issues := env.Compile(r.Match)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile routing rule %q: %w", r.Match, issues.Err())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("build routing rule %q: %w", r.Match, err)
		}
		policy.rules = append(policy.rules, compiledRule{program: program, audience: r.Audience})
	}
	return policy, nil
}

func (p *CELRoutingPolicy) Audiences(event *domain.NotificationRequested) ([]string, error) {
	vars := map[string]any{
		"event":      event.Event,
		"actor_role": event.ActorRole,
		"terminal":   event.Terminal,
	}

	var audiences []string
	for _, r := range p.rules {
		out, _, err := r.program.Eval(vars)
		if err != nil {
			return nil, fmt.Errorf("eval routing rule for audience %s: %w", r.audience, err)
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return nil, fmt.Errorf("routing rule for audience %s did not evaluate to bool", r.audience)
		}
		if matched {
			audiences = append(audiences, r.audience)
		}
	}
	return audiences, nil
}

var _ domain.RoutingPolicy = (*CELRoutingPolicy)(nil)
