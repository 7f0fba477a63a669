package app

import "fmt"

const interviewerSystemPrompt = "你是一位资深的招聘经理，擅长根据简历和职位要求提出深刻的面试问题。"

// buildInterviewPrompt embeds the resume text and optional job description
// into the question-generation instruction.
func buildInterviewPrompt(resumeText, jobDescription string) string {
	if jobDescription == "" {
		jobDescription = "未提供"
	}
	return fmt.Sprintf(`请扮演一位资深的招聘经理或技术面试官。
我将提供一份求职者的简历文本，以及可选的目标岗位描述。
你的任务是：
1. 仔细分析简历中的每一部分，包括工作经历、项目经验、技能和教育背景。
2. 结合目标岗位描述（如果提供的话），生成一系列有深度、有针对性的面试问题。
3. 问题应该覆盖以下几个方面：
   - 针对具体工作职责和成就的深挖问题。
   - 考察技术或专业技能实际应用的问题。
   - 行为面试问题（Behavioral Questions）。
   - 如果简历中存在潜在的疑点，也需要提出相关问题。
4. 请以清晰、有条理的格式输出，例如使用Markdown标题和列表。

---
**目标岗位描述:**
%s

---
**简历文本:**
%s
`, jobDescription, resumeText)
}
