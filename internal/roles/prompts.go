package roles

import (
	"fmt"
	"strings"

	"dev.supermcp.debate/internal/models"
)

var roleFocus = map[models.Role]string{
	models.RoleCFOConservative: `As a Conservative CFO, focus on:
- Financial risk assessment and mitigation
- Cost-benefit analysis with conservative projections
- Cash flow impact and working capital considerations
- ROI calculations using conservative metrics
- Compliance with financial regulations
- Sustainable growth over aggressive expansion
- Protection of existing revenue streams

Provide a detailed financial perspective emphasizing stability and risk management.`,

	models.RoleCFOGrowth: `As a Growth-Oriented CFO, focus on:
- Revenue expansion opportunities and scaling potential
- Investment requirements for aggressive growth
- Market penetration financial modeling
- Competitive advantage from financial perspective
- Capital allocation for maximum growth impact
- KPI tracking for growth initiatives
- Strategic financial partnerships and funding

Provide a growth-focused financial analysis emphasizing expansion and opportunity.`,

	models.RoleCTOPragmatic: `As a Pragmatic CTO, focus on:
- Technical feasibility with current resources
- Implementation timeline and realistic milestones
- System reliability and maintenance considerations
- Security implications and risk mitigation
- Integration with existing technology stack
- Team capacity and skill requirements
- Cost-effective technical solutions

Provide practical technical analysis emphasizing reliability and implementation.`,

	models.RoleCTOInnovative: `As an Innovative CTO, focus on:
- Cutting-edge technology opportunities
- Scalability and future-proofing architecture
- Competitive technical advantages
- Innovation potential and differentiation
- Emerging technology integration possibilities
- Technical roadmap for disruption
- Investment in transformative capabilities

Provide visionary technical analysis emphasizing innovation and competitive advantage.`,

	models.RoleCMOBrand: `As a Brand-Focused CMO, focus on:
- Brand consistency and reputation protection
- Customer perception and messaging alignment
- Brand equity impact of proposed initiatives
- Stakeholder communication strategy
- Risk to brand image and mitigation
- Brand positioning and competitive differentiation
- Long-term brand value preservation

Provide brand-centric marketing analysis emphasizing reputation and consistency.`,

	models.RoleCMOGrowth: `As a Growth-Oriented CMO, focus on:
- Customer acquisition and market expansion
- Growth marketing strategies and channels
- Conversion optimization and funnel improvement
- Market penetration and customer lifetime value
- Competitive market share capture
- Viral and scalable marketing mechanisms
- Data-driven growth experiments

Provide growth-focused marketing analysis emphasizing acquisition and expansion.`,

	models.RoleLegalCompliance: `As a Compliance-Focused Legal Advisor, focus on:
- Regulatory compliance requirements and implications
- Legal risk assessment and mitigation strategies
- Industry-specific regulations and standards
- Data protection and privacy considerations
- Contractual obligations and liabilities
- Audit trail and documentation requirements
- Risk tolerance and legal exposure

Provide comprehensive legal analysis emphasizing compliance and risk management.`,

	models.RoleLegalBusiness: `As a Business-Oriented Legal Advisor, focus on:
- Legal frameworks that enable business objectives
- Strategic legal positioning and competitive advantage
- Commercial terms optimization
- Intellectual property considerations
- Partnership and collaboration legal structures
- Efficient legal processes that accelerate business
- Balanced risk-taking within legal boundaries

Provide business-enabling legal analysis emphasizing opportunity and strategic advantage.`,

	models.RoleStrategyExecution: `As an Execution-Focused Strategist, focus on:
- Implementation roadmap and tactical steps
- Resource allocation and operational requirements
- Timeline management and milestone tracking
- Risk mitigation during execution
- Team coordination and responsibility matrix
- Success metrics and performance indicators
- Continuous monitoring and course correction

Provide execution-oriented strategic analysis emphasizing implementation and delivery.`,

	models.RoleStrategyVision: `As a Visionary Strategist, focus on:
- Long-term strategic implications and opportunities
- Market positioning and competitive advantage
- Future market trends and disruption potential
- Strategic partnerships and ecosystem development
- Innovation opportunities and blue ocean strategies
- Transformation potential and paradigm shifts
- Visionary leadership and change management

Provide forward-looking strategic analysis emphasizing vision and transformation.`,
}

// DisplayName renders a role identifier as a human-readable title,
// e.g. "cfo_conservative" becomes "Cfo Conservative".
func DisplayName(role models.Role) string {
	parts := strings.Split(string(role), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// RolePrompt builds the specialized prompt for one role over the task content.
func (o *Orchestrator) RolePrompt(role models.Role, content string, clientContext map[string]string) string {
	base := fmt.Sprintf("Analyzing the following content from the perspective of %s:\n\n%s\n\n",
		DisplayName(role), content)
	focus, ok := roleFocus[role]
	if !ok {
		return base + "Provide your specialized analysis."
	}
	return base + focus
}
