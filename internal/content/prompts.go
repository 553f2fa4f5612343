package content

import (
	"fmt"
	"strings"
)

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func defaultMetadata(lang Language) StoryMetadata {
	if lang.isVi() {
		return StoryMetadata{FemaleLead: "Nữ chính", MaleLead: "Nam chính", Villain: "Phản diện"}
	}
	return StoryMetadata{FemaleLead: "Female lead", MaleLead: "Male lead", Villain: "Villain"}
}

func castLine(meta StoryMetadata, lang Language) string {
	if lang.isVi() {
		return fmt.Sprintf("Nhân vật cố định (không được đổi tên): Nữ chính: %s; Nam chính: %s; Phản diện: %s.",
			meta.FemaleLead, meta.MaleLead, meta.Villain)
	}
	return fmt.Sprintf("Fixed cast (never rename them): Female lead: %s; Male lead: %s; Villain: %s.",
		meta.FemaleLead, meta.MaleLead, meta.Villain)
}

func outlinePrompt(p Project) (string, string) {
	chapters := p.ChapterCount()
	lo, hi := TargetChars(p.DurationMin, p.AutoDuration)

	if p.Language.isVi() {
		system := "Bạn là biên kịch kênh YouTube kể chuyện/audiobook. Trả về JSON đúng schema."
		var b strings.Builder
		fmt.Fprintf(&b, "Dựa trên tên sách/chủ đề %q.", p.BookTitle)
		if p.Idea != "" {
			fmt.Fprintf(&b, " Kết hợp với ý tưởng/bối cảnh: %q.", p.Idea)
		}
		fmt.Fprintf(&b, " Tên kênh: %q, tên MC: %q.", orDefault(p.ChannelName, "N/A"), orDefault(p.MCName, "N/A"))
		b.WriteString(" Hãy tạo dàn ý kịch bản cho một video YouTube theo phong cách kể chuyện/audiobook.\n")
		if p.AutoDuration {
			fmt.Fprintf(&b, "Mục tiêu: video dài khoảng 40-60 phút (%d - %d ký tự kịch bản). Tự quyết định số chương phù hợp (thường 15-25).\n", lo, hi)
		} else {
			fmt.Fprintf(&b, "Mục tiêu: video dài chính xác %d phút (khoảng %d ký tự). Chia nội dung thành %d chương chính.\n", p.DurationMin, lo, chapters)
		}
		fmt.Fprintf(&b, "Cấu trúc bắt buộc: 1. Hook (nhắc tên kênh %s nếu phù hợp), 2. Intro (giới thiệu MC %s), 3. Các chương chính, 4. Bài học rút ra, 5. Kết thúc.\n", p.ChannelName, p.MCName)
		b.WriteString("Đặt tên cố định cho nữ chính, nam chính và phản diện trong metadata. Ngôn ngữ đầu ra: Tiếng Việt.")
		return system, b.String()
	}

	system := "You are a scriptwriter for a storytelling/audiobook YouTube channel. Return JSON matching the schema."
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the book/topic %q.", p.BookTitle)
	if p.Idea != "" {
		fmt.Fprintf(&b, " Incorporate this idea/context: %q.", p.Idea)
	}
	fmt.Fprintf(&b, " Channel name: %q, host name: %q.", orDefault(p.ChannelName, "N/A"), orDefault(p.MCName, "N/A"))
	b.WriteString(" Create a script outline for a YouTube video in storytelling/audiobook style.\n")
	if p.AutoDuration {
		fmt.Fprintf(&b, "Goal: a video of roughly 40-60 minutes (%d - %d script characters). Choose the number of chapters yourself (usually 15-25).\n", lo, hi)
	} else {
		fmt.Fprintf(&b, "Goal: a video of exactly %d minutes (about %d characters). Structure the content into %d main chapters.\n", p.DurationMin, lo, chapters)
	}
	fmt.Fprintf(&b, "Required structure: 1. Hook (mention channel %s if fitting), 2. Intro (introduce host %s), 3. Main story chapters, 4. Key takeaways, 5. Conclusion.\n", p.ChannelName, p.MCName)
	b.WriteString("Give the female lead, male lead and villain fixed names in metadata. Output language: English (US), professional and engaging.")
	return system, b.String()
}

func storyBlockPrompt(item OutlineItem, meta StoryMetadata, p Project) (string, string) {
	actions := strings.Join(item.Actions, ", ")
	if p.Language.isVi() {
		system := "Bạn là một tiểu thuyết gia tài ba. Chỉ trả về nội dung truyện tiếng Việt."
		prompt := fmt.Sprintf("Viết nội dung chi tiết cho chương %q của tác phẩm %q.\n%s\nMục tiêu: %q. Tình tiết: %s.\n",
			item.Title, p.BookTitle, castLine(meta, p.Language), item.Focus, actions)
		if p.Idea != "" {
			prompt += fmt.Sprintf("Lưu ý ý tưởng chủ đạo: %q.\n", p.Idea)
		}
		prompt += "Viết dạng văn xuôi, kể chuyện, lôi cuốn, giàu cảm xúc. 400-600 từ."
		return system, prompt
	}

	system := "You are a best-selling novelist. Output only the story prose in English."
	prompt := fmt.Sprintf("Write detailed content for the chapter %q of the book/story %q.\n%s\nGoal: %q. Plot points: %s.\n",
		item.Title, p.BookTitle, castLine(meta, p.Language), item.Focus, actions)
	if p.Idea != "" {
		prompt += fmt.Sprintf("Note the core idea: %q.\n", p.Idea)
	}
	prompt += "Write in prose, storytelling style, engaging and emotional. 400-600 words."
	return system, prompt
}

func reviewBlockPrompt(block StoryBlock, p Project) (string, string) {
	if p.Language.isVi() {
		system := fmt.Sprintf("Bạn là Reviewer/MC kênh AudioBook nổi tiếng, giọng đọc trầm ấm, sâu sắc. Tên kênh: %q, tên MC: %q. Dùng đúng các tên này khi chào hỏi hoặc giới thiệu.",
			orDefault(p.ChannelName, "Kênh của bạn"), orDefault(p.MCName, "Mình"))
		prompt := fmt.Sprintf("Viết lời dẫn/kịch bản review cho phần nội dung sau của cuốn sách %q.\nChương: %q\nNội dung gốc: %q\nYêu cầu: phân tích, bình luận, dẫn dắt; đan xen tóm tắt và bài học; giọng văn tự nhiên. Trả lời bằng tiếng Việt.",
			p.BookTitle, block.Title, block.Content)
		return system, prompt
	}

	system := fmt.Sprintf("You are a famous audiobook narrator and reviewer with a warm, insightful voice. Channel name: %q, host name: %q. Use these names naturally in intros and outros.",
		orDefault(p.ChannelName, "Your Channel"), orDefault(p.MCName, "Me"))
	prompt := fmt.Sprintf("Write a review script for the following content of the book %q.\nChapter: %q\nOriginal content: %q\nRequirements: analyze, comment and guide the listener; interweave summary with insights; natural conversational tone. Output strictly in English.",
		p.BookTitle, block.Title, block.Content)
	return system, prompt
}

func seoPrompt(p Project, references []string) (string, string) {
	var refs string
	if len(references) > 0 {
		refs = "\n- " + strings.Join(references, "\n- ")
	}

	if p.Language.isVi() {
		system := "Bạn là chuyên gia SEO YouTube. Trả về JSON đúng schema."
		prompt := fmt.Sprintf("Tạo nội dung SEO cho video YouTube về %q. Dạng review/kể chuyện dài %d phút.", p.BookTitle, p.DurationMin)
		if p.ChannelName != "" {
			prompt += fmt.Sprintf(" Tên kênh là %q.", p.ChannelName)
		}
		prompt += " Cung cấp: 8 tiêu đề clickbait, hashtags, keywords (bao gồm tên kênh) và mô tả video chuẩn SEO (nhắc đến tên kênh). Ngôn ngữ: Tiếng Việt."
		if refs != "" {
			prompt += "\nTiêu đề video đang đứng top để tham khảo (không sao chép):" + refs
		}
		return system, prompt
	}

	system := "You are a YouTube SEO expert. Return JSON matching the schema."
	prompt := fmt.Sprintf("Generate SEO content for a YouTube video about %q. Format: audiobook/review, %d minutes long.", p.BookTitle, p.DurationMin)
	if p.ChannelName != "" {
		prompt += fmt.Sprintf(" Channel name is %q.", p.ChannelName)
	}
	prompt += " Provide: 8 clickbait titles, hashtags, keywords (include the channel name) and an SEO-optimized description (mention the channel name). Language: English."
	if refs != "" {
		prompt += "\nCurrently ranking titles for reference (do not copy):" + refs
	}
	return system, prompt
}

func videoPromptsPrompt(p Project) string {
	return fmt.Sprintf("Generate 5 cinematic, photorealistic video prompts for background visuals in a YouTube video about %q. Visuals should match the story's mood. Aspect ratio: %s. No text or logos. Return a JSON array of strings.",
		p.BookTitle, orDefault(p.FrameRatio, "16:9"))
}

func thumbIdeasPrompt(p Project) string {
	duration := DurationLabel(p.DurationMin)
	if p.Language.isVi() {
		return fmt.Sprintf("Cho video YouTube về %q, đề xuất 5 text thumbnail ngắn gọn, gây tò mò, tiếng Việt. Một ý phải chứa thời lượng: %s. Trả về JSON array.", p.BookTitle, duration)
	}
	return fmt.Sprintf("For a YouTube video about %q, suggest 5 short, curiosity-inducing thumbnail texts in English. One idea must include the duration: %s. Return a JSON array.", p.BookTitle, duration)
}

func rewritePrompt(original, feedback string, meta *StoryMetadata, lang Language) (string, string) {
	var cast string
	if meta != nil {
		cast = castLine(*meta, lang) + "\n"
	}
	if lang.isVi() {
		system := "Bạn là biên tập viên văn học. Chỉ trả về đoạn truyện đã viết lại, không giải thích."
		prompt := fmt.Sprintf("%sViết lại đoạn truyện sau theo yêu cầu chỉnh sửa, giữ nguyên mạch truyện và độ dài tương đương.\nYêu cầu: %s\nĐoạn gốc:\n%s", cast, feedback, original)
		return system, prompt
	}
	system := "You are a literary editor. Output only the rewritten passage, no explanations."
	prompt := fmt.Sprintf("%sRewrite the following passage according to the feedback, keeping the plot and a similar length.\nFeedback: %s\nOriginal passage:\n%s", cast, feedback, original)
	return system, prompt
}

func evaluatePrompt(story string, p Project) (string, string) {
	if p.Language.isVi() {
		system := "Bạn là biên tập viên khó tính của một nhà xuất bản."
		prompt := fmt.Sprintf("Đánh giá truyện %q dưới đây: điểm mạnh, điểm yếu, tính nhất quán của nhân vật, nhịp truyện, và đề xuất cụ thể cho từng chương cần sửa. Chấm điểm tổng thể trên thang 10. Trả lời bằng tiếng Việt.\n\n%s", p.BookTitle, story)
		return system, prompt
	}
	system := "You are a demanding editor at a publishing house."
	prompt := fmt.Sprintf("Evaluate the story %q below: strengths, weaknesses, character consistency, pacing, and concrete suggestions for each chapter that needs work. Give an overall score out of 10. Answer in English.\n\n%s", p.BookTitle, story)
	return system, prompt
}
