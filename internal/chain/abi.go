package chain

// PulseChat 合约 ABI（固定外部接口，合约实现不在本仓库）
const contractABI = `[
  {"type":"function","stateMutability":"view","name":"profiles","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"username","type":"string"},{"name":"bio","type":"string"},{"name":"avatarUrl","type":"string"},{"name":"createdAt","type":"uint256"}]},
  {"type":"function","stateMutability":"view","name":"userStats","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"postCount","type":"uint256"},{"name":"commentCount","type":"uint256"},{"name":"messageCount","type":"uint256"},{"name":"totalFeePaid","type":"uint256"}]},
  {"type":"function","stateMutability":"view","name":"feeAmount","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","stateMutability":"view","name":"usdc","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","stateMutability":"view","name":"totalPosts","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","stateMutability":"view","name":"totalUsers","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","stateMutability":"view","name":"totalComments","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","stateMutability":"view","name":"totalMessages","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","stateMutability":"view","name":"getLatestPosts","inputs":[{"name":"n","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"id","type":"uint256"},{"name":"author","type":"address"},{"name":"content","type":"string"},{"name":"timestamp","type":"uint256"},{"name":"likeCount","type":"uint256"},{"name":"commentCount","type":"uint256"},{"name":"repostCount","type":"uint256"},{"name":"quotedPostId","type":"uint256"}]}]},
  {"type":"function","stateMutability":"view","name":"getUserPosts","inputs":[{"name":"user","type":"address"},{"name":"n","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"id","type":"uint256"},{"name":"author","type":"address"},{"name":"content","type":"string"},{"name":"timestamp","type":"uint256"},{"name":"likeCount","type":"uint256"},{"name":"commentCount","type":"uint256"},{"name":"repostCount","type":"uint256"},{"name":"quotedPostId","type":"uint256"}]}]},
  {"type":"function","stateMutability":"view","name":"getCommentsForPost","inputs":[{"name":"postId","type":"uint256"},{"name":"n","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"id","type":"uint256"},{"name":"postId","type":"uint256"},{"name":"author","type":"address"},{"name":"content","type":"string"},{"name":"timestamp","type":"uint256"}]}]},
  {"type":"function","stateMutability":"view","name":"getMessagesByUser","inputs":[{"name":"user","type":"address"},{"name":"n","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"content","type":"string"},{"name":"timestamp","type":"uint256"}]}]},
  {"type":"function","stateMutability":"view","name":"getTopUsersByFee","inputs":[{"name":"n","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"user","type":"address"},{"name":"totalFee","type":"uint256"}]}]},
  {"type":"function","stateMutability":"view","name":"hasLikedPost","inputs":[{"name":"postId","type":"uint256"},{"name":"user","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","stateMutability":"nonpayable","name":"createPost","inputs":[{"name":"content","type":"string"}],"outputs":[]},
  {"type":"function","stateMutability":"nonpayable","name":"commentOnPost","inputs":[{"name":"postId","type":"uint256"},{"name":"content","type":"string"}],"outputs":[]},
  {"type":"function","stateMutability":"nonpayable","name":"repostPost","inputs":[{"name":"postId","type":"uint256"},{"name":"content","type":"string"}],"outputs":[]},
  {"type":"function","stateMutability":"nonpayable","name":"likePost","inputs":[{"name":"postId","type":"uint256"}],"outputs":[]},
  {"type":"function","stateMutability":"nonpayable","name":"tipUSDC","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","stateMutability":"nonpayable","name":"sendDirectMessage","inputs":[{"name":"to","type":"address"},{"name":"content","type":"string"}],"outputs":[]},
  {"type":"function","stateMutability":"nonpayable","name":"setProfile","inputs":[{"name":"username","type":"string"},{"name":"bio","type":"string"},{"name":"avatarUrl","type":"string"}],"outputs":[]}
]`

// 手续费代币（USDC 兼容 ERC20）最小 ABI
const erc20ABI = `[
  {"type":"function","stateMutability":"view","name":"decimals","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","stateMutability":"view","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","stateMutability":"view","name":"allowance","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","stateMutability":"nonpayable","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`
