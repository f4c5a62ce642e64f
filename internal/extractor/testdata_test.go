package extractor

const (
	metaAndStatePage = `<!DOCTYPE html>
<html><head>
<title>示例笔记 - 小红书</title>
<meta name="og:title" content="示例笔记">
<meta name="og:xhs:note_like" content="88">
<meta name="og:xhs:note_collect" content="12">
<meta name="og:xhs:note_comment" content="3">
</head><body>
<script>window.__INITIAL_STATE__={"note":{"noteDetailMap":{"64f0":{"note":{"title":"State title","user":{"nickname":"alice","userId":"u1"},"interactInfo":{"likedCount":"120","collectedCount":"40","commentCount":"5"}}}}}}</script>
</body></html>`

	stateOnlyPage = `<!DOCTYPE html>
<html><head><title>State title - 小红书</title></head><body>
<script>var analytics = {};</script>
<script>window.__INITIAL_STATE__ = {"global":{"appSettings":{}},"note":{"noteDetailMap":{"64f0":{"comments":[],"note":{"title":"State title","desc":"desc text","user":{"nickname":"alice","userId":"u1"},"interactInfo":{"likedCount":"120","collectedCount":"40","commentCount":"5","shareCount":undefined}}}}}};</script>
</body></html>`

	malformedStatePage = `<!DOCTYPE html>
<html><head><title>Broken - 小红书</title></head><body>
<script>window.__INITIAL_STATE__={"note": {broken;</script>
<script>var other = 1;</script>
<script>var data = {interactInfo: {"commentCount": 7}};</script>
</body></html>`

	titleOnlyPage = `<!DOCTYPE html>
<html><head><title>示例笔记 - 小红书</title></head><body><p>login required</p></body></html>`

	emptyPage = `<!DOCTYPE html>
<html><head></head><body><p>nothing here</p></body></html>`

	userPage = `<!DOCTYPE html>
<html><head><title>bob - 小红书</title></head><body>
<script>window.__INITIAL_STATE__={"user":{"userPageData":{"basicInfo":{"nickname":"bob","redId":"123","desc":"hello"},"interactions":[{"type":"follows","count":"10"},{"type":"fans","count":"2.1万"},{"type":"interaction","count":"3.4万"}]}}}</script>
</body></html>`
)
